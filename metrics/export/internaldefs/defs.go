package internaldefs

import (
	goAuthClient "github.com/MrEthical07/goAuthClient"
)

type CounterDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goAuthClient.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in rendering order.
var CounterDefs = []CounterDef{
	{ID: goAuthClient.MetricRequestSent, Name: "goauthclient_requests_total", Help: "Requests dispatched through the authenticated transport."},
	{ID: goAuthClient.MetricTransportError, Name: "goauthclient_transport_errors_total", Help: "Requests that failed below HTTP."},
	{ID: goAuthClient.MetricUnauthorized, Name: "goauthclient_unauthorized_total", Help: "First-attempt 401 responses."},
	{ID: goAuthClient.MetricRefreshSuccess, Name: "goauthclient_refresh_success_total", Help: "Successful token refreshes."},
	{ID: goAuthClient.MetricRefreshFailure, Name: "goauthclient_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: goAuthClient.MetricRefreshCoalesced, Name: "goauthclient_refresh_coalesced_total", Help: "Refreshes that joined an in-flight call."},
	{ID: goAuthClient.MetricRetrySent, Name: "goauthclient_retry_sent_total", Help: "Requests re-sent after a refresh."},
	{ID: goAuthClient.MetricRetryUnauthorized, Name: "goauthclient_retry_unauthorized_total", Help: "Re-sent requests that were still rejected with 401."},
	{ID: goAuthClient.MetricLoginSuccess, Name: "goauthclient_login_success_total", Help: "Successful logins."},
	{ID: goAuthClient.MetricLoginFailure, Name: "goauthclient_login_failure_total", Help: "Failed logins."},
	{ID: goAuthClient.MetricRegisterSuccess, Name: "goauthclient_register_success_total", Help: "Successful registrations."},
	{ID: goAuthClient.MetricRegisterFailure, Name: "goauthclient_register_failure_total", Help: "Failed registrations."},
	{ID: goAuthClient.MetricLogout, Name: "goauthclient_logout_total", Help: "User-initiated logouts."},
	{ID: goAuthClient.MetricForcedLogout, Name: "goauthclient_forced_logout_total", Help: "Sessions torn down after a failed refresh."},
}

var HistogramDefs = []HistogramDef{
	{ID: goAuthClient.MetricRefreshLatency, Name: "goauthclient_refresh_latency_seconds", Help: "Refresh round-trip latency."},
}

// HistogramBounds are the Prometheus le labels, matching the client's bucket
// edges of 5, 10, 25, 50, 100, 250 and 500 milliseconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix names the per-bucket OTel gauges.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
