package middleware

import "net/http"

// RequireStrict is Guard with Options.RequireToken set: a profile restored from
// the token store is not enough until the first refresh has produced an access
// token.
func RequireStrict(session SessionState, loginPath string) func(http.Handler) http.Handler {
	return Guard(session, Options{LoginPath: loginPath, RequireToken: true})
}
