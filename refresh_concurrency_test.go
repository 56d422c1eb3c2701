package goAuthClient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// barrierBackend holds every tok-A request until n of them have arrived, then
// answers all of them 401. That forces n independent recoveries.
type barrierBackend struct {
	n            int32
	arrived      atomic.Int32
	release      chan struct{}
	once         sync.Once
	refreshCalls  atomic.Int32
	refreshDelay  time.Duration
	refreshStatus int
}

func newBarrierBackend(n int, refreshDelay time.Duration) *barrierBackend {
	return &barrierBackend{n: int32(n), release: make(chan struct{}), refreshDelay: refreshDelay}
}

func (b *barrierBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if strings.HasSuffix(r.URL.Path, "/auth/refresh") {
		b.refreshCalls.Add(1)
		time.Sleep(b.refreshDelay)
		if b.refreshStatus != 0 {
			w.WriteHeader(b.refreshStatus)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-B"}`))
		return
	}

	if r.Header.Get("Authorization") == "Bearer tok-B" {
		_, _ = w.Write([]byte(`{}`))
		return
	}
	if b.arrived.Add(1) >= b.n {
		b.once.Do(func() { close(b.release) })
	}
	select {
	case <-b.release:
	case <-time.After(5 * time.Second):
	}
	w.WriteHeader(http.StatusUnauthorized)
}

func runConcurrentGets(t *testing.T, client *Client, n int) {
	t.Helper()
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- client.Get(context.Background(), "/bookings", nil)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
	}
}

func TestConcurrentUnauthorizedEachRefreshWithoutCoalescing(t *testing.T) {
	const n = 8
	backend := newBarrierBackend(n, 0)
	srv := httptest.NewServer(backend)
	defer srv.Close()
	client, _ := newBodyModeClient(t, srv, nil)

	runConcurrentGets(t, client, n)

	if got := backend.refreshCalls.Load(); got != n {
		t.Fatalf("expected %d independent refresh calls, got %d", n, got)
	}
	if got := client.MetricsSnapshot().Counters[MetricRetrySent]; got != n {
		t.Fatalf("expected %d retries, got %d", n, got)
	}
}

func TestConcurrentUnauthorizedCoalescedRefresh(t *testing.T) {
	const n = 8
	backend := newBarrierBackend(n, 200*time.Millisecond)
	srv := httptest.NewServer(backend)
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/api/v1"
	cfg.Refresh.Mode = RefreshModeBody
	cfg.Refresh.Coalesce = true
	cfg.Metrics.Enabled = true

	client, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer client.Close()
	_ = client.Session().Establish(context.Background(), &AuthResponse{AccessToken: "tok-A", RefreshToken: "rt-1"})

	runConcurrentGets(t, client, n)

	if got := backend.refreshCalls.Load(); got != 1 {
		t.Fatalf("expected a single coalesced refresh, got %d", got)
	}
	if got := client.MetricsSnapshot().Counters[MetricRefreshCoalesced]; got != n-1 {
		t.Fatalf("expected %d coalesced waiters, got %d", n-1, got)
	}
}

func TestCoalescedRefreshFailureTearsDownOnce(t *testing.T) {
	const n = 8
	backend := newBarrierBackend(n, 200*time.Millisecond)
	backend.refreshStatus = http.StatusUnauthorized
	srv := httptest.NewServer(backend)
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/api/v1"
	cfg.Refresh.Mode = RefreshModeBody
	cfg.Refresh.Coalesce = true
	cfg.Metrics.Enabled = true

	nav := &recordingNavigator{}
	client, err := New().WithConfig(cfg).WithNavigator(nav).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer client.Close()
	_ = client.Session().Establish(context.Background(), &AuthResponse{AccessToken: "tok-A", RefreshToken: "rt-1", User: &User{ID: "u-1"}})

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- client.Get(context.Background(), "/bookings", nil)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if !errors.Is(err, ErrSessionExpired) || !errors.Is(err, ErrRefreshFailed) {
			t.Fatalf("expected ErrSessionExpired wrapping the refresh failure, got %v", err)
		}
	}

	if got := backend.refreshCalls.Load(); got != 1 {
		t.Fatalf("expected a single coalesced refresh, got %d", got)
	}
	if paths := nav.Paths(); len(paths) != 1 || paths[0] != "/login" {
		t.Fatalf("expected one navigation to /login, got %v", paths)
	}
	snap := client.MetricsSnapshot()
	if snap.Counters[MetricForcedLogout] != 1 {
		t.Fatalf("expected one forced logout, got %d", snap.Counters[MetricForcedLogout])
	}
	if snap.Counters[MetricRefreshCoalesced] != n-1 {
		t.Fatalf("expected %d coalesced waiters, got %d", n-1, snap.Counters[MetricRefreshCoalesced])
	}
	if client.Session().Authenticated() {
		t.Fatal("session must be cleared")
	}
}

func TestCancelledRequestDoesNotTearDownSession(t *testing.T) {
	backend := newBarrierBackend(1, 300*time.Millisecond)
	srv := httptest.NewServer(backend)
	defer srv.Close()
	nav := &recordingNavigator{}
	client, _ := newBodyModeClient(t, srv, nav)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := client.Get(ctx, "/bookings", nil); err == nil {
		t.Fatal("expected cancellation error")
	}
	if len(nav.Paths()) != 0 {
		t.Fatalf("cancellation must not force logout, got %v", nav.Paths())
	}
}
