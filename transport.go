package goAuthClient

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const requestIDHeader = "X-Request-ID"

// authTransport attaches the session's bearer token and recovers from a 401 by
// refreshing once and re-sending the request.
//
// Flow per request:
//
//	attach token -> send
//	  non-401, retried, or recovery disabled -> return response
//	  401 -> mark retried -> refresh
//	    ok   -> re-send once with the new token -> return whatever comes back
//	    fail -> session torn down -> ErrSessionExpired
type authTransport struct {
	base      http.RoundTripper
	session   *Session
	refresher *refresher
	metrics   *Metrics
	logger    *slog.Logger
	userAgent string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	first, err := t.prepare(req)
	if err != nil {
		return nil, err
	}
	t.attach(first, t.session.AccessToken())

	if !retried(ctx) {
		t.metrics.Inc(MetricRequestSent)
	}
	resp, err := t.base.RoundTrip(first)
	if err != nil {
		t.metrics.Inc(MetricTransportError)
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || retried(ctx) || recoveryDisabled(ctx) {
		return resp, nil
	}

	t.metrics.Inc(MetricUnauthorized)
	drainAndClose(resp.Body)

	log := t.logger.With(
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("request_id", first.Header.Get(requestIDHeader)),
	)
	log.Debug("access token rejected, refreshing")

	access, err := t.refresher.refreshOrExpire(ctx)
	if err != nil {
		log.Warn("refresh failed, session expired", slog.String("error", err.Error()))
		return nil, err
	}

	second, err := t.replay(first)
	if err != nil {
		return nil, err
	}
	t.attach(second, access)

	t.metrics.Inc(MetricRetrySent)
	resp, err = t.base.RoundTrip(second)
	if err != nil {
		t.metrics.Inc(MetricTransportError)
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.metrics.Inc(MetricRetryUnauthorized)
		log.Warn("retried request still unauthorized")
	}
	return resp, nil
}

// prepare clones req, makes its body replayable, and stamps a request ID and user
// agent. The caller's request is never modified.
func (t *authTransport) prepare(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())

	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		data, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		out.Body = io.NopCloser(bytes.NewReader(data))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
		out.ContentLength = int64(len(data))
	}

	if out.Header.Get(requestIDHeader) == "" {
		id := RequestIDFromContext(req.Context())
		if id == "" {
			id = uuid.NewString()
		}
		out.Header.Set(requestIDHeader, id)
	}
	if t.userAgent != "" && out.Header.Get("User-Agent") == "" {
		out.Header.Set("User-Agent", t.userAgent)
	}
	return out, nil
}

// replay builds the single retry of first. It keeps the request ID and is marked
// retried so it can never recover again.
func (t *authTransport) replay(first *http.Request) (*http.Request, error) {
	out := first.Clone(markRetried(first.Context()))
	if first.GetBody != nil && first.Body != nil && first.Body != http.NoBody {
		body, err := first.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}
	return out, nil
}

// attach sets the bearer token. Without one the request goes out with whatever
// Authorization header the caller set, if any.
func (t *authTransport) attach(req *http.Request, access string) {
	if access == "" {
		return
	}
	tok := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	tok.SetAuthHeader(req)
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
