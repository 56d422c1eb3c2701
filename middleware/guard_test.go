package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

type fakeSession struct {
	user  *goAuthClient.User
	token string
}

func (f fakeSession) Authenticated() bool      { return f.user != nil || f.token != "" }
func (f fakeSession) AccessToken() string      { return f.token }
func (f fakeSession) IsAdmin() bool            { return f.user != nil && f.user.Role == goAuthClient.RoleAdmin }
func (f fakeSession) User() *goAuthClient.User { return f.user }

func okHandler(t *testing.T, wantUser bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); ok != wantUser {
			t.Errorf("user in context = %v, want %v", ok, wantUser)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestGuard(t *testing.T) {
	passenger := &goAuthClient.User{ID: "u-1", Role: "passenger"}
	admin := &goAuthClient.User{ID: "u-2", Role: goAuthClient.RoleAdmin}

	tests := []struct {
		name     string
		session  SessionState
		opts     Options
		path     string
		status   int
		location string
	}{
		{"anonymous", fakeSession{}, Options{}, "/bookings?page=2", http.StatusFound, "/login?next=%2Fbookings%3Fpage%3D2"},
		{"nil session", nil, Options{LoginPath: "/signin"}, "/bookings", http.StatusFound, "/signin?next=%2Fbookings"},
		{"passenger", fakeSession{user: passenger}, Options{}, "/bookings", http.StatusNoContent, ""},
		{"token only", fakeSession{token: "tok"}, Options{}, "/bookings", http.StatusNoContent, ""},
		{"passenger on admin route", fakeSession{user: passenger}, Options{RequireAdmin: true}, "/admin", http.StatusFound, "/"},
		{"custom forbidden path", fakeSession{user: passenger}, Options{RequireAdmin: true, ForbiddenPath: "/trips"}, "/admin", http.StatusFound, "/trips"},
		{"admin", fakeSession{user: admin}, Options{RequireAdmin: true}, "/admin", http.StatusNoContent, ""},
		{"restored profile without token", fakeSession{user: passenger}, Options{RequireToken: true}, "/me", http.StatusFound, "/login?next=%2Fme"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wantUser := tc.status == http.StatusNoContent && tc.session != nil && tc.session.User() != nil
			h := Guard(tc.session, tc.opts)(okHandler(t, wantUser))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if got := rec.Header().Get("Location"); got != tc.location {
				t.Fatalf("location = %q, want %q", got, tc.location)
			}
		})
	}
}

func TestRequireHelpers(t *testing.T) {
	passenger := fakeSession{user: &goAuthClient.User{ID: "u-1", Role: "passenger"}}

	rec := httptest.NewRecorder()
	RequireAdmin(passenger, "")(okHandler(t, true)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("RequireAdmin status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	RequireStrict(fakeSession{user: passenger.user, token: "tok"}, "")(okHandler(t, true)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("RequireStrict status = %d", rec.Code)
	}
}

func TestSessionExpiredRedirect(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		location string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"expired", fmt.Errorf("%w: %w", goAuthClient.ErrSessionExpired, goAuthClient.ErrRefreshFailed), http.StatusFound, "/login?next=%2Fbookings"},
		{"api error", &goAuthClient.APIError{StatusCode: http.StatusConflict, Message: "seat taken"}, http.StatusConflict, ""},
		{"transport", errors.New("dial tcp: refused"), http.StatusBadGateway, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := SessionExpiredRedirect("", func(w http.ResponseWriter, r *http.Request) error {
				if tc.err != nil {
					return tc.err
				}
				w.WriteHeader(http.StatusOK)
				return nil
			})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings", nil))

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if got := rec.Header().Get("Location"); got != tc.location {
				t.Fatalf("location = %q, want %q", got, tc.location)
			}
		})
	}
}

var _ SessionState = (*goAuthClient.Session)(nil)
