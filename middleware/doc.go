// Package middleware guards HTTP handlers of a server that acts on behalf of a
// logged-in goAuthClient session, such as a backend-for-frontend or a local
// operator console.
//
// # Guards
//
//   - [Guard] redirects to the login path when the session is not
//     authenticated, and away from admin routes when the role is not admin.
//   - [RequireStrict] additionally demands a live access token, not only a
//     profile restored by Session.Bootstrap.
//   - [SessionExpiredRedirect] turns an ErrSessionExpired returned by a handler
//     into a redirect to the login path.
//
// Guards only read session state. Refresh and teardown stay in the client.
package middleware
