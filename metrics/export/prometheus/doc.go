// Package prometheus exposes goAuthClient metrics to Prometheus.
//
// [NewExporter] takes a *goAuthClient.Client and renders the text exposition
// format itself, for a /metrics route without any registry. [NewCollector]
// adapts the same series to a client_golang registry, for processes that
// already serve promhttp. Counter names are goauthclient_*_total; the single
// histogram is goauthclient_refresh_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global default registry. Callers choose the
//     registry or mount the Handler.
//   - Mutate client state.
package prometheus
