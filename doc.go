// Package goAuthClient provides an authenticated HTTP client for REST backends that
// issue short-lived bearer access tokens and longer-lived refresh tokens.
//
// Every request sent through a [Client] carries the current access token. When the
// backend answers 401, the client performs exactly one refresh call for that request,
// re-sends it once with the new token, and otherwise hands the response back to the
// caller unchanged. A failed refresh is terminal: the [Session] is torn down and the
// configured [Navigator] is sent to the login entry point.
//
// # Architecture boundaries
//
// goAuthClient is the public surface. It exposes [Client], [Builder], [Config],
// [Session] and value types (AuthResponse, MetricsSnapshot, AuditEvent, etc.).
// Token persistence lives in the store package, JWT inspection in jwt, typed
// business endpoints in bookings, and HTTP guards in middleware.
//
// # What this package must NOT do
//
//   - Persist access tokens anywhere but process memory.
//   - Expose the refresh token to callers in cookie mode.
//   - Retry a request more than once, or refresh more than once per request.
//   - Log token material.
//
// # Concurrency
//
// Client and Session methods are safe to call from multiple goroutines after
// [Builder.Build]. Each request owns its own retry budget; concurrent 401s refresh
// independently unless Config.Refresh.Coalesce is set.
package goAuthClient
