package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

type fakeSource struct {
	snapshot goAuthClient.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goAuthClient.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                          { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: goAuthClient.MetricsSnapshot{
			Counters:   map[goAuthClient.MetricID]uint64{},
			Histograms: map[goAuthClient.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderIncludesCounterAndHistogram(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: goAuthClient.MetricsSnapshot{
			Counters: map[goAuthClient.MetricID]uint64{
				goAuthClient.MetricRefreshSuccess: 7,
				goAuthClient.MetricRetrySent:      7,
			},
			Histograms: map[goAuthClient.MetricID][]uint64{
				goAuthClient.MetricRefreshLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	for _, want := range []string{
		"goauthclient_refresh_success_total 7",
		"goauthclient_retry_sent_total 7",
		"goauthclient_forced_logout_total 0",
		`goauthclient_refresh_latency_seconds_bucket{le="0.005"} 1`,
		`goauthclient_refresh_latency_seconds_bucket{le="+Inf"} 36`,
		"goauthclient_refresh_latency_seconds_count 36",
		"goauthclient_audit_dropped_total 2",
		"# TYPE goauthclient_refresh_latency_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestExporterReadsLiveClient(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer backend.Close()

	cfg := goAuthClient.DefaultConfig()
	cfg.BaseURL = backend.URL
	client, err := goAuthClient.New().WithConfig(cfg).WithMetricsEnabled(true).Build()
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	if err := client.Get(context.Background(), "/ping", nil); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	NewExporter(client).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), "goauthclient_requests_total 1") {
		t.Fatalf("request counter missing:\n%s", rec.Body.String())
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: goAuthClient.MetricsSnapshot{
			Counters: map[goAuthClient.MetricID]uint64{
				goAuthClient.MetricRequestSent:    1000,
				goAuthClient.MetricUnauthorized:   40,
				goAuthClient.MetricRefreshSuccess: 38,
				goAuthClient.MetricRefreshFailure: 2,
				goAuthClient.MetricRetrySent:      38,
			},
			Histograms: map[goAuthClient.MetricID][]uint64{
				goAuthClient.MetricRefreshLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	})

	b.ReportAllocs()
	for b.Loop() {
		_ = exp.Render()
	}
}
