// Package authtest runs an in-process stand-in for the booking backend's auth and
// resource endpoints, for exercising the client end to end.
//
// The server issues HS256 access tokens and opaque refresh tokens, delivered
// either in the response body or as an HttpOnly cookie. Tests drive it with
// knobs: ExpireAccess invalidates every issued access token, FailRefresh makes
// the refresh endpoint answer 401, ConfirmPayment plays a gateway callback, and
// RefreshCalls and Requests report what the client actually sent.
//
// Routes (relative to URL()):
//
//	POST /auth/register      POST /auth/login     POST /auth/refresh   POST /auth/logout
//	GET  /trips              GET  /trips/{id}     GET  /trips/{id}/seats          (public)
//	GET  /users/me
//	GET  /bookings           POST /bookings       GET  /bookings/{id}
//	POST /bookings/{id}/cancel
//	POST /payments           GET  /payments/{id}
//	GET  /tickets/{code}     POST /tickets/{code}/checkin
//	POST /chatbot/message    GET  /chatbot/history                                (bearer)
//	/admin/buses, /admin/routes: list, create, get, update, delete
//	/admin/trips: create, update, delete                                          (admin)
//
// The catalogue is seeded with one twelve-seat bus and two trips departing the
// next day.
package authtest
