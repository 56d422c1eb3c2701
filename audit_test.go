package goAuthClient

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{gate: make(chan struct{})}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

type panicSink struct {
	calls atomic.Int64
}

func (s *panicSink) Emit(context.Context, AuditEvent) {
	if s.calls.Add(1) == 1 {
		panic("sink exploded")
	}
}

func enabledAudit(size int, drop bool) AuditConfig {
	return AuditConfig{Enabled: true, BufferSize: size, DropIfFull: drop}
}

func TestAuditDisabledReturnsNilDispatcher(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, &countingSink{}, nil)
	if d != nil {
		t.Fatal("disabled audit must not start a worker")
	}
	// nil dispatcher is inert
	d.Record(context.Background(), AuditLogin, "u1", nil)
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestAuditRecordStampsEvent(t *testing.T) {
	sink := NewChannelSink(4)
	d := newAuditDispatcher(enabledAudit(4, false), sink, nil)
	defer d.Close()

	ctx := WithRequestID(context.Background(), "req-9")
	d.Record(ctx, AuditRefresh, "u1", ErrRefreshFailed)

	select {
	case ev := <-sink.Events():
		if ev.EventType != AuditRefresh || ev.UserID != "u1" || ev.RequestID != "req-9" {
			t.Fatalf("unexpected event %+v", ev)
		}
		if ev.Success || ev.Error == "" {
			t.Fatalf("failed event must carry error, got %+v", ev)
		}
		if ev.Timestamp.IsZero() {
			t.Fatal("timestamp not set")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestAuditBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	d := newAuditDispatcher(enabledAudit(1, true), sink, nil)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), AuditEvent{EventType: "e1"})
	d.Emit(context.Background(), AuditEvent{EventType: "e2"})

	start := time.Now()
	d.Emit(context.Background(), AuditEvent{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestAuditBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	d := newAuditDispatcher(enabledAudit(1, false), sink, nil)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), AuditEvent{EventType: "e1"})
	d.Emit(context.Background(), AuditEvent{EventType: "e2"})

	done := make(chan struct{})
	go func() {
		d.Emit(context.Background(), AuditEvent{EventType: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestAuditBlockedEmitGivesUpOnContext(t *testing.T) {
	sink := newGateSink()
	d := newAuditDispatcher(enabledAudit(1, false), sink, nil)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	d.Emit(context.Background(), AuditEvent{EventType: "e1"})
	d.Emit(context.Background(), AuditEvent{EventType: "e2"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	d.Emit(ctx, AuditEvent{EventType: "e3"})
	if d.Dropped() != 1 {
		t.Fatalf("expected one drop after context expiry, got %d", d.Dropped())
	}
}

func TestAuditSinkPanicDoesNotKillWorker(t *testing.T) {
	sink := &panicSink{}
	d := newAuditDispatcher(enabledAudit(4, false), sink, nil)

	d.Emit(context.Background(), AuditEvent{EventType: "e1"})
	d.Emit(context.Background(), AuditEvent{EventType: "e2"})
	d.Close()

	if got := sink.calls.Load(); got != 2 {
		t.Fatalf("expected both events delivered, got %d", got)
	}
}

func TestAuditCloseFlushesQueue(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(enabledAudit(16, false), sink, nil)
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "e"})
	}
	d.Close()
	if got := sink.count.Load(); got != 10 {
		t.Fatalf("expected 10 flushed events, got %d", got)
	}
}

func TestAuditDispatcherCloseIdempotentAndEmitAfterCloseSafe(t *testing.T) {
	d := newAuditDispatcher(enabledAudit(4, true), &countingSink{}, nil)

	d.Emit(context.Background(), AuditEvent{EventType: "e1"})
	d.Close()
	d.Close()
	d.Emit(context.Background(), AuditEvent{EventType: "e2"})
}

func TestAuditJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: AuditForcedLogout,
		UserID:    "u1",
		Success:   true,
	})

	if !buf.Contains(`"event_type":"forced_logout"`) {
		t.Fatal("expected JSON log line to contain event type")
	}
	if !buf.Contains(`"user_id":"u1"`) {
		t.Fatal("expected JSON log line to contain user id")
	}
	if !buf.Contains("\n") {
		t.Fatal("expected newline-terminated record")
	}
}

// loginRefreshBackend accepts any login, then fails every refresh.
func loginRefreshBackend() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"acc-secret","refresh_token":"rt-secret","user":{"id":"u1","email":"a@example.com","role":"passenger"}}`))
	})
	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"refresh token expired"}`))
	})
	mux.HandleFunc("/api/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	return mux
}

func TestAuditSessionLifecycleWithoutSecrets(t *testing.T) {
	srv := httptest.NewServer(loginRefreshBackend())
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/api/v1"
	cfg.Refresh.Mode = RefreshModeBody
	cfg.Audit = enabledAudit(16, false)

	var buf syncBuffer
	client, err := New().WithConfig(cfg).WithAuditSink(NewJSONWriterSink(&buf)).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	ctx := context.Background()
	if _, err := client.Login(ctx, LoginInput{Email: "a@example.com", Password: "hunter22"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	_ = client.Get(ctx, "/bookings", nil)
	client.Close()

	for _, want := range []string{`"event_type":"login"`, `"event_type":"refresh"`, `"event_type":"forced_logout"`} {
		if !buf.Contains(want) {
			t.Fatalf("expected %s in audit log:\n%s", want, buf.String())
		}
	}
	for _, secret := range []string{"acc-secret", "rt-secret", "hunter22"} {
		if buf.Contains(secret) {
			t.Fatalf("audit log leaked %q", secret)
		}
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Contains(v string) bool {
	return strings.Contains(b.String(), v)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
