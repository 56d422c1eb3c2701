package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// HandlerFunc is an http handler that reports upstream failures as errors.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// SessionExpiredRedirect adapts h to http.Handler. An error matching
// goAuthClient.ErrSessionExpired redirects to loginPath; an *APIError is
// answered with its status and message; anything else is a 502.
//
// h must not have written a response when it returns an error.
func SessionExpiredRedirect(loginPath string, h HandlerFunc) http.Handler {
	if loginPath == "" {
		loginPath = "/login"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		var apiErr *goAuthClient.APIError
		switch {
		case errors.Is(err, goAuthClient.ErrSessionExpired):
			redirectToLogin(w, r, loginPath)
		case errors.As(err, &apiErr):
			msg := apiErr.Message
			if msg == "" {
				msg = http.StatusText(apiErr.StatusCode)
			}
			http.Error(w, msg, apiErr.StatusCode)
		default:
			slog.Default().ErrorContext(r.Context(), "upstream request failed",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		}
	})
}
