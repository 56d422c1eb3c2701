package goAuthClient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

const maxAuthResponseBytes = 1 << 20

// refresher performs POST <Paths.Refresh>. It sends through its own http.Client
// built on the base transport, so a 401 from the refresh endpoint is a plain
// failure and never re-enters recovery.
type refresher struct {
	url     string
	mode    RefreshMode
	timeout time.Duration

	client  *http.Client
	session *Session
	metrics *Metrics
	logger  *slog.Logger

	coalesce bool
	group    singleflight.Group
}

// refreshOrExpire refreshes the access token. On failure it tears the session
// down and returns an error wrapping both ErrSessionExpired and the cause.
func (r *refresher) refreshOrExpire(ctx context.Context) (string, error) {
	if r.coalesce {
		return r.shared(ctx)
	}

	access, err := r.do(ctx)
	if err == nil {
		return access, nil
	}
	if ctx.Err() != nil {
		// caller gave up; the session itself may still be fine
		return "", err
	}
	return "", r.expire(ctx, err)
}

func (r *refresher) expire(ctx context.Context, cause error) error {
	_ = r.session.Teardown(ctx, LogoutReasonSessionExpired)
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}

// shared runs one refresh for every concurrent caller. The leader alone tears
// the session down when it fails, so waiters only receive the error and the
// user is logged out and navigated once.
func (r *refresher) shared(ctx context.Context) (string, error) {
	leader := false
	ch := r.group.DoChan("refresh", func() (interface{}, error) {
		leader = true
		detached := context.WithoutCancel(ctx)
		access, err := r.do(detached)
		if err != nil {
			return "", r.expire(detached, err)
		}
		return access, nil
	})

	select {
	case res := <-ch:
		if !leader {
			r.metrics.Inc(MetricRefreshCoalesced)
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *refresher) do(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	access, err := r.call(ctx)
	r.metrics.Observe(MetricRefreshLatency, time.Since(start))

	if err != nil {
		r.metrics.Inc(MetricRefreshFailure)
		r.session.emitAudit(ctx, AuditRefresh, r.userID(), err)
		return "", err
	}
	r.metrics.Inc(MetricRefreshSuccess)
	r.session.emitAudit(ctx, AuditRefresh, r.userID(), nil)
	r.logger.Debug("access token refreshed", slog.Duration("elapsed", time.Since(start)))
	return access, nil
}

func (r *refresher) call(ctx context.Context) (string, error) {
	var body refreshRequest
	if r.mode == RefreshModeBody {
		token, err := r.session.refreshToken(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		}
		body.RefreshToken = token
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxAuthResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, newAPIError(resp.StatusCode, raw))
	}

	var out AuthResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.AccessToken == "" {
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, ErrInvalidAuthResponse)
	}
	if err := r.session.applyRefresh(ctx, &out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return out.AccessToken, nil
}

func (r *refresher) userID() string {
	if u := r.session.User(); u != nil {
		return u.ID
	}
	return ""
}
