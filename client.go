package goAuthClient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 8 << 20

// Client is the authenticated API client. Every request sent through it carries
// the session's bearer token and gets one refresh-and-resend attempt on 401.
//
// Build one with New().WithConfig(cfg)...Build(). A Client is safe for concurrent
// use; Close releases the audit worker and idle connections.
type Client struct {
	config    Config
	http      *http.Client
	session   *Session
	refresher *refresher
	metrics   *Metrics
	audit     *auditDispatcher
	logger    *slog.Logger
}

/*
====================================
RAW PIPELINE
====================================
*/

// Do sends req through the authenticated pipeline. A refresh failure during
// recovery surfaces as an error matching ErrSessionExpired; every other response,
// including a second 401, is returned unchanged.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c == nil || c.http == nil {
		return nil, ErrClientNotReady
	}
	return c.http.Do(req)
}

// NewRequest builds a request for path relative to Config.BaseURL. body may be
// nil, an io.Reader, a []byte, or any value encoded as JSON.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}

	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	case []byte:
		reader = bytes.NewReader(b)
		contentType = "application/json"
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// DoJSON sends in as JSON and decodes a 2xx response into out. Non-2xx responses
// become *APIError. in and out may be nil.
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	req, err := c.NewRequest(ctx, method, path, in)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return unwrapURLError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.DoJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.DoJSON(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, http.MethodDelete, path, nil, out)
}

// WithQuery appends q to path. Empty values are dropped.
func WithQuery(path string, q url.Values) string {
	clean := url.Values{}
	for k, vs := range q {
		for _, v := range vs {
			if v != "" {
				clean.Add(k, v)
			}
		}
	}
	if len(clean) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + clean.Encode()
}

/*
====================================
AUTH ENDPOINTS
====================================
*/

// Login exchanges credentials for tokens and establishes the session. A 401 is
// reported as ErrInvalidCredentials; login never triggers refresh.
func (c *Client) Login(ctx context.Context, in LoginInput) (*AuthResponse, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}
	resp, err := c.authenticate(ctx, c.config.Paths.Login, in)
	if err != nil {
		c.metrics.Inc(MetricLoginFailure)
		c.session.emitAudit(ctx, AuditLogin, "", err)
		if IsUnauthorized(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	c.metrics.Inc(MetricLoginSuccess)
	c.session.emitAudit(ctx, AuditLogin, userIDOf(resp.User), nil)
	c.logger.Info("logged in", slog.String("user_id", userIDOf(resp.User)))
	return resp, nil
}

// Register creates an account and establishes the session from the response.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}
	resp, err := c.authenticate(ctx, c.config.Paths.Register, in)
	if err != nil {
		c.metrics.Inc(MetricRegisterFailure)
		c.session.emitAudit(ctx, AuditRegister, "", err)
		return nil, err
	}
	c.metrics.Inc(MetricRegisterSuccess)
	c.session.emitAudit(ctx, AuditRegister, userIDOf(resp.User), nil)
	c.logger.Info("registered", slog.String("user_id", userIDOf(resp.User)))
	return resp, nil
}

func (c *Client) authenticate(ctx context.Context, path string, in any) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.DoJSON(WithoutRecovery(ctx), http.MethodPost, path, in, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, ErrInvalidAuthResponse
	}
	if err := c.session.Establish(ctx, &out); err != nil {
		return nil, err
	}
	out.RefreshToken = ""
	out.User = cloneUser(out.User)
	return &out, nil
}

// Refresh forces a token refresh through the same path 401 recovery uses,
// including teardown on failure.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	if c == nil {
		return "", ErrClientNotReady
	}
	return c.refresher.refreshOrExpire(ctx)
}

// Logout notifies the backend when Paths.Logout is set, then clears the session.
// The backend call is best effort; local state is always cleared.
func (c *Client) Logout(ctx context.Context) error {
	if c == nil {
		return ErrClientNotReady
	}
	if c.config.Paths.Logout != "" {
		var body refreshRequest
		if c.config.Refresh.Mode == RefreshModeBody {
			body.RefreshToken, _ = c.session.refreshToken(ctx)
		}
		if err := c.DoJSON(WithoutRecovery(ctx), http.MethodPost, c.config.Paths.Logout, body, nil); err != nil {
			c.logger.Warn("backend logout failed", slog.String("error", err.Error()))
		}
	}
	return c.session.Teardown(ctx, LogoutReasonUser)
}

/*
====================================
ACCESSORS
====================================
*/

// Session returns the client's session state.
func (c *Client) Session() *Session {
	if c == nil {
		return nil
	}
	return c.session
}

// HTTPClient returns the underlying *http.Client. Requests sent through it get
// the same token handling as Do.
func (c *Client) HTTPClient() *http.Client {
	if c == nil {
		return nil
	}
	return c.http
}

// MetricsSnapshot returns a copy of the client's counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{}
	}
	return c.metrics.Snapshot()
}

// Metrics returns the live metrics set, for exporters.
func (c *Client) Metrics() *Metrics {
	if c == nil {
		return nil
	}
	return c.metrics
}

// AuditDropped returns the number of audit events dropped on a full buffer.
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// Close flushes pending audit events and closes idle connections.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.audit.Close()
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.config.BaseURL + path
}

// unwrapURLError strips *url.Error when it wraps one of our sentinels, so callers
// see ErrSessionExpired directly in error messages.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && errors.Is(urlErr.Err, ErrSessionExpired) {
		return urlErr.Err
	}
	return err
}

func userIDOf(u *User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

// requestTimeout is the effective per-request timeout; zero means none.
func requestTimeout(cfg Config) time.Duration {
	if cfg.Timeout < 0 {
		return 0
	}
	return cfg.Timeout
}
