package middleware

import (
	"context"
	"net/http"
	"net/url"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// SessionState is the part of *goAuthClient.Session a guard reads.
type SessionState interface {
	Authenticated() bool
	AccessToken() string
	IsAdmin() bool
	User() *goAuthClient.User
}

// Options configures Guard.
type Options struct {
	// LoginPath receives unauthenticated requests. Defaults to "/login".
	LoginPath string
	// RequireAdmin rejects sessions whose role is not admin.
	RequireAdmin bool
	// ForbiddenPath receives authenticated non-admin requests on admin routes.
	// Defaults to "/".
	ForbiddenPath string
	// RequireToken rejects sessions that hold a cached profile but no access
	// token yet.
	RequireToken bool
}

type userContextKey struct{}

// UserFromContext returns the profile Guard attached to the request, if any.
func UserFromContext(ctx context.Context) (*goAuthClient.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*goAuthClient.User)
	return u, ok && u != nil
}

// Guard returns middleware that only lets authenticated sessions through. The
// original request path is passed to the login page as ?next=.
func Guard(session SessionState, opts Options) func(http.Handler) http.Handler {
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	if opts.ForbiddenPath == "" {
		opts.ForbiddenPath = "/"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session == nil || !session.Authenticated() {
				redirectToLogin(w, r, opts.LoginPath)
				return
			}
			if opts.RequireToken && session.AccessToken() == "" {
				redirectToLogin(w, r, opts.LoginPath)
				return
			}
			if opts.RequireAdmin && !session.IsAdmin() {
				http.Redirect(w, r, opts.ForbiddenPath, http.StatusFound)
				return
			}

			ctx := r.Context()
			if u := session.User(); u != nil {
				ctx = context.WithValue(ctx, userContextKey{}, u)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin is Guard with Options.RequireAdmin set.
func RequireAdmin(session SessionState, loginPath string) func(http.Handler) http.Handler {
	return Guard(session, Options{LoginPath: loginPath, RequireAdmin: true})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := loginPath
	if r.URL.Path != "" && r.URL.Path != loginPath {
		target += "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusFound)
}
