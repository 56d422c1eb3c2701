package goAuthClient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrSessionExpired is returned when recovery from a 401 failed and the session was torn down.
	ErrSessionExpired = errors.New("session expired")
	// ErrRefreshFailed wraps the cause of a failed refresh call.
	ErrRefreshFailed = errors.New("refresh failed")
	// ErrNoRefreshToken is returned by body-mode refresh when no refresh token is stored.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrInvalidCredentials is returned by Login when the backend rejects the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidAuthResponse is returned when a login, register or refresh response lacks an access token.
	ErrInvalidAuthResponse = errors.New("invalid auth response")
	// ErrClientNotReady is returned when a nil or unbuilt client is used.
	ErrClientNotReady = errors.New("client not initialized")
	// ErrInvalidConfig is wrapped by every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// APIError is returned by the JSON helpers for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
}

// Unauthorized reports whether the backend answered 401.
func (e *APIError) Unauthorized() bool {
	return e != nil && e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized reports whether err carries a 401 APIError.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

// IsSessionExpired reports whether err ended the session.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// newAPIError reads the backend's {"error": "..."} envelope, falling back to
// {"message": "..."}.
func newAPIError(status int, body []byte) *APIError {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &envelope)

	msg := envelope.Error
	if msg == "" {
		msg = envelope.Message
	}
	return &APIError{
		StatusCode: status,
		Message:    msg,
		Body:       body,
	}
}

func configError(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
