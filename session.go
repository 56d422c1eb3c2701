package goAuthClient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/store"
)

// Session is the process-wide authentication state of a Client: the in-memory
// access token, the cached user profile, and the handles needed to clear the
// persisted refresh token.
//
// One Session exists per Client. Its lifecycle is explicit:
//
//	Bootstrap  restore the user profile from the TokenStore at startup
//	Establish  adopt the tokens returned by login or register
//	Teardown   forget everything (logout or unrecoverable refresh failure)
//
// Session is safe for concurrent use.
type Session struct {
	mu          sync.RWMutex
	accessToken string
	user        *User

	mode       RefreshMode
	store      store.TokenStore
	jar        http.CookieJar
	cookieName string
	cookieURLs []*url.URL
	loginPath  string

	navigator Navigator
	metrics   *Metrics
	audit     *auditDispatcher
	logger    *slog.Logger
}

/*
====================================
LIFECYCLE
====================================
*/

// Bootstrap restores the cached user profile from the TokenStore. The access
// token always starts empty: the first authenticated request gets a 401 and
// recovers through refresh.
//
// In body mode a profile without a stored refresh token cannot be recovered, so
// the store is cleared instead.
func (s *Session) Bootstrap(ctx context.Context) error {
	if s == nil {
		return ErrClientNotReady
	}

	raw, err := s.store.LoadUser(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap session: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	if s.mode == RefreshModeBody {
		token, err := s.store.LoadRefreshToken(ctx)
		if err != nil {
			return fmt.Errorf("bootstrap session: %w", err)
		}
		if token == "" {
			s.logger.Warn("cached user without refresh token, clearing store")
			return s.store.Clear(ctx)
		}
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		s.logger.Warn("cached user profile unreadable, clearing store", slog.String("error", err.Error()))
		return s.store.Clear(ctx)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.logger.Debug("session restored", slog.String("user_id", user.ID))
	return nil
}

// Establish adopts the tokens and profile from a login or register response. In
// cookie mode any refresh token in the body is ignored; the cookie jar already
// holds it.
func (s *Session) Establish(ctx context.Context, resp *AuthResponse) error {
	if s == nil {
		return ErrClientNotReady
	}
	if resp == nil || resp.AccessToken == "" {
		return ErrInvalidAuthResponse
	}

	if s.mode == RefreshModeBody {
		if resp.RefreshToken == "" {
			return fmt.Errorf("%w: missing refresh token", ErrInvalidAuthResponse)
		}
		if err := s.store.SaveRefreshToken(ctx, resp.RefreshToken); err != nil {
			return err
		}
	}
	if resp.User != nil {
		raw, err := json.Marshal(resp.User)
		if err != nil {
			return err
		}
		if err := s.store.SaveUser(ctx, raw); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	if resp.User != nil {
		s.user = cloneUser(resp.User)
	}
	s.mu.Unlock()
	return nil
}

// Teardown clears the access token, the user profile, the stored refresh token
// and the refresh cookie. After a LogoutReasonSessionExpired teardown the
// Navigator is sent to the login path.
//
// Teardown runs to completion even when ctx is already cancelled.
func (s *Session) Teardown(ctx context.Context, reason LogoutReason) error {
	if s == nil {
		return ErrClientNotReady
	}
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	var userID string
	if s.user != nil {
		userID = s.user.ID
	}
	s.accessToken = ""
	s.user = nil
	s.mu.Unlock()

	err := s.store.Clear(ctx)
	s.expireRefreshCookie()

	if reason == LogoutReasonSessionExpired {
		s.metrics.Inc(MetricForcedLogout)
		s.emitAudit(ctx, AuditForcedLogout, userID, err)
	} else {
		s.metrics.Inc(MetricLogout)
		s.emitAudit(ctx, AuditLogout, userID, err)
	}
	if err != nil {
		s.logger.Error("token store clear failed", slog.String("reason", reason.String()), slog.String("error", err.Error()))
	}
	s.logger.Info("session cleared", slog.String("reason", reason.String()), slog.String("user_id", userID))

	if reason == LogoutReasonSessionExpired {
		s.navigator.Navigate(s.loginPath)
	}
	return err
}

/*
====================================
ACCESSORS
====================================
*/

// AccessToken returns the current access token or "".
func (s *Session) AccessToken() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SetAccessToken replaces the in-memory access token.
func (s *Session) SetAccessToken(token string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

// User returns a copy of the cached profile, or nil.
func (s *Session) User() *User {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

// Authenticated reports whether the session holds a profile or an access token.
func (s *Session) Authenticated() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil || s.accessToken != ""
}

// Claims decodes the current access token without verifying it.
func (s *Session) Claims() (*jwt.AccessClaims, error) {
	token := s.AccessToken()
	if token == "" {
		return nil, ErrNoAccessToken
	}
	return jwt.Inspect(token)
}

// Role returns the profile role, falling back to the access token's role claim.
func (s *Session) Role() string {
	if u := s.User(); u != nil && u.Role != "" {
		return u.Role
	}
	if claims, err := s.Claims(); err == nil {
		return claims.Role
	}
	return ""
}

// IsAdmin reports whether Role is RoleAdmin.
func (s *Session) IsAdmin() bool {
	return s.Role() == RoleAdmin
}

/*
====================================
REFRESH SUPPORT
====================================
*/

func (s *Session) refreshToken(ctx context.Context) (string, error) {
	token, err := s.store.LoadRefreshToken(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoRefreshToken
	}
	return token, nil
}

// applyRefresh stores a refreshed access token and, in body mode, a rotated
// refresh token.
func (s *Session) applyRefresh(ctx context.Context, resp *AuthResponse) error {
	if s.mode == RefreshModeBody && resp.RefreshToken != "" {
		if err := s.store.SaveRefreshToken(ctx, resp.RefreshToken); err != nil {
			return err
		}
	}
	s.SetAccessToken(resp.AccessToken)
	return nil
}

// expireRefreshCookie removes the refresh cookie from the jar. A cookie the jar
// would send to any of cookieURLs sits under one of that URL's path prefixes and
// on its host or a parent domain, so every such combination is expired. This
// also covers a Set-Cookie without Path, which the jar files under the
// directory of the URL that set it.
func (s *Session) expireRefreshCookie() {
	if s.jar == nil || s.cookieName == "" {
		return
	}
	for _, u := range s.cookieURLs {
		for _, domain := range cookieDomains(u.Hostname()) {
			for _, p := range pathPrefixes(u.Path) {
				s.jar.SetCookies(u, []*http.Cookie{{
					Name:    s.cookieName,
					Value:   "",
					Path:    p,
					Domain:  domain,
					MaxAge:  -1,
					Expires: time.Unix(0, 0),
				}})
			}
		}
	}

	for _, u := range s.cookieURLs {
		for _, c := range s.jar.Cookies(u) {
			if c.Name == s.cookieName {
				s.logger.Warn("refresh cookie still in jar after teardown", slog.String("path", u.Path))
				return
			}
		}
	}
}

// pathPrefixes returns "/" and every directory prefix of p, each with and
// without a trailing slash.
func pathPrefixes(p string) []string {
	out := []string{"/"}
	for i := 1; i < len(p); i++ {
		if p[i] == '/' {
			out = append(out, p[:i], p[:i+1])
		}
	}
	if p != "/" && p != "" && !strings.HasSuffix(p, "/") {
		out = append(out, p, p+"/")
	}
	return out
}

// cookieDomains returns "" (host-only) followed by every parent domain of host
// that still contains a dot. IP hosts only get host-only cookies.
func cookieDomains(host string) []string {
	out := []string{""}
	if host == "" || net.ParseIP(host) != nil {
		return out
	}
	for rest := host; ; {
		i := strings.IndexByte(rest, '.')
		if i < 0 {
			break
		}
		rest = rest[i+1:]
		if !strings.Contains(rest, ".") {
			break
		}
		out = append(out, rest)
	}
	return out
}

func (s *Session) emitAudit(ctx context.Context, eventType, userID string, err error) {
	s.audit.Record(ctx, eventType, userID, err)
}
