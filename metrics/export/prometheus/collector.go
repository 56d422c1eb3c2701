package prometheus

import (
	"strconv"

	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/MrEthical07/goAuthClient/metrics/export/internaldefs"
)

// Collector exposes the same series as Exporter through a client_golang
// registry. Values are read from the source on every scrape.
type Collector struct {
	source     metricsSource
	counters   []*promclient.Desc
	histograms []*promclient.Desc
	dropped    *promclient.Desc
	bounds     []float64
}

var _ promclient.Collector = (*Collector)(nil)

// NewCollector returns a Collector for source, typically a *goAuthClient.Client.
// constLabels are attached to every series, which lets several clients share a
// registry.
func NewCollector(source metricsSource, constLabels promclient.Labels) *Collector {
	c := &Collector{
		source:  source,
		dropped: promclient.NewDesc("goauthclient_audit_dropped_total", "Audit events dropped on a full buffer.", nil, constLabels),
	}
	for _, def := range internaldefs.CounterDefs {
		c.counters = append(c.counters, promclient.NewDesc(def.Name, def.Help, nil, constLabels))
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histograms = append(c.histograms, promclient.NewDesc(def.Name, def.Help, nil, constLabels))
	}
	for _, le := range internaldefs.HistogramBounds {
		// +Inf is implied by the histogram count.
		if v, err := strconv.ParseFloat(le, 64); err == nil && le != "+Inf" {
			c.bounds = append(c.bounds, v)
		}
	}
	return c
}

func (c *Collector) Describe(ch chan<- *promclient.Desc) {
	for _, d := range c.counters {
		ch <- d
	}
	for _, d := range c.histograms {
		ch <- d
	}
	ch <- c.dropped
}

func (c *Collector) Collect(ch chan<- promclient.Metric) {
	if c.source == nil {
		return
	}
	snapshot := c.source.MetricsSnapshot()

	for i, def := range internaldefs.CounterDefs {
		ch <- promclient.MustNewConstMetric(c.counters[i], promclient.CounterValue, float64(snapshot.Counters[def.ID]))
	}

	for i, def := range internaldefs.HistogramDefs {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID]))
		buckets := make(map[float64]uint64, len(c.bounds))
		for j, le := range c.bounds {
			buckets[le] = cumulative[j]
		}
		count := cumulative[len(cumulative)-1]
		ch <- promclient.MustNewConstHistogram(c.histograms[i], count, 0, buckets)
	}

	ch <- promclient.MustNewConstMetric(c.dropped, promclient.CounterValue, float64(c.source.AuditDropped()))
}
