// Package otel exposes goAuthClient metrics through an OpenTelemetry meter.
//
// Counters become Int64ObservableCounter instruments with the same names as the
// Prometheus exporter. The refresh latency histogram is published as one
// cumulative gauge per bucket plus a count gauge, since observable histograms
// are not part of the OTel metric API.
package otel
