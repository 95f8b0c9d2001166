// FILE: logship/src/internal/metrics/collector.go
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "logship"

// StatsProvider is implemented by every transport, sender and filter chain.
type StatsProvider interface {
	GetStats() map[string]any
}

// stat maps one statistics key to a metric. Nested maps are addressed with
// dots, e.g. "sender.total_retries".
type stat struct {
	path      string
	name      string
	help      string
	valueType prometheus.ValueType
}

var stats = []stat{
	{"total_logged", "entries_logged_total", "Entries accepted by the transport.", prometheus.CounterValue},
	{"pending_entries", "entries_pending", "Entries queued and not yet handed to the sender.", prometheus.GaugeValue},
	{"total_batches", "batches_total", "Batches handed to the sender.", prometheus.CounterValue},
	{"failed_batches", "batches_failed_total", "Batches that could not be delivered.", prometheus.CounterValue},
	{"lost_entries", "entries_lost_total", "Entries in failed batches.", prometheus.CounterValue},
	{"total_processed", "console_entries_total", "Entries written by the console transport.", prometheus.CounterValue},
	{"total_failed", "console_failures_total", "Console format or write failures.", prometheus.CounterValue},
	{"sender.total_requests", "http_requests_total", "HTTP requests issued, retries included.", prometheus.CounterValue},
	{"sender.total_retries", "http_retries_total", "HTTP retry attempts.", prometheus.CounterValue},
	{"sender.total_failed", "http_failures_total", "Batches the HTTP sender gave up on.", prometheus.CounterValue},
	{"sender.total_bytes", "http_sent_bytes_total", "Payload bytes sent.", prometheus.CounterValue},
	{"sender.last_status", "http_last_status", "Status code of the most recent response.", prometheus.GaugeValue},
	{"total_dropped", "entries_discarded_total", "Entries discarded by the none transport.", prometheus.CounterValue},
	{"filters.dropped", "entries_filtered_total", "Entries dropped by filters.", prometheus.CounterValue},
}

// Collector exports a StatsProvider's statistics on every scrape. Keys the
// provider does not report are skipped.
type Collector struct {
	provider StatsProvider
	descs    []*prometheus.Desc
}

// NewCollector creates a collector reading from p.
func NewCollector(p StatsProvider) *Collector {
	c := &Collector{provider: p, descs: make([]*prometheus.Desc, len(stats))}
	for i, s := range stats {
		c.descs[i] = prometheus.NewDesc(prometheus.BuildFQName(namespace, "", s.name), s.help, nil, nil)
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.provider.GetStats()
	for i, s := range stats {
		v, ok := lookup(snapshot, s.path)
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.descs[i], s.valueType, v)
	}
}

// Handler registers a collector for p on a dedicated registry, alongside
// the Go runtime collectors, and returns its HTTP handler.
func Handler(p StatsProvider) (http.Handler, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(NewCollector(p)); err != nil {
		return nil, err
	}
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}

func lookup(m map[string]any, path string) (float64, bool) {
	head, rest, nested := strings.Cut(path, ".")
	v, ok := m[head]
	if !ok {
		return 0, false
	}
	if nested {
		inner, ok := v.(map[string]any)
		if !ok {
			return 0, false
		}
		return lookup(inner, rest)
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case uint64:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
