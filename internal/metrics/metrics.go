// Package metrics exposes ingestion and fan-out counters via Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/starlogs/starlogs-go/internal/tailer"
)

var (
	// LinesProcessed counts raw log lines fed through the pipeline.
	LinesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starlogs_lines_processed_total",
		Help: "Total log lines fed through the classification pipeline",
	})

	// EventsClassified counts classified events by kind.
	EventsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starlogs_events_classified_total",
		Help: "Total classified events by kind",
	}, []string{"kind"})

	// EventsDropped counts lines that matched a pattern but failed to parse.
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starlogs_events_dropped_total",
		Help: "Total events dropped due to malformed captures",
	})

	// SubscribersDropped counts subscribers disconnected for falling behind.
	SubscribersDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starlogs_subscribers_dropped_total",
		Help: "Total subscribers dropped because their queue was full",
	})

	// SubscribersActive tracks the current subscriber count.
	SubscribersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "starlogs_subscribers_active",
		Help: "Current number of connected subscribers",
	})

	// SessionResets counts history clears (reprocess or source switch).
	SessionResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starlogs_session_resets_total",
		Help: "Total session resets",
	})
)

// engineCollector turns tail engine diagnostics into gauges at scrape time,
// so the engine keeps plain atomics and no Prometheus dependency.
type engineCollector struct {
	diag func() tailer.Diagnostics

	polls  *prometheus.Desc
	lines  *prometheus.Desc
	bytes  *prometheus.Desc
	cursor *prometheus.Desc
	size   *prometheus.Desc
}

// RegisterEngine registers a collector backed by the given diagnostics
// snapshot function (typically Session.Diagnostics, which follows the
// current engine across source switches).
func RegisterEngine(diag func() tailer.Diagnostics) prometheus.Collector {
	c := &engineCollector{
		diag:   diag,
		polls:  prometheus.NewDesc("starlogs_tail_poll_checks_total", "Total tail poll checks", nil, nil),
		lines:  prometheus.NewDesc("starlogs_tail_lines_read_total", "Total lines read from the log file", nil, nil),
		bytes:  prometheus.NewDesc("starlogs_tail_bytes_read_total", "Total bytes read from the log file", nil, nil),
		cursor: prometheus.NewDesc("starlogs_tail_cursor_bytes", "Current byte cursor into the log file", nil, nil),
		size:   prometheus.NewDesc("starlogs_tail_file_size_bytes", "Last observed log file size", nil, nil),
	}
	prometheus.MustRegister(c)
	return c
}

func (c *engineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.polls
	ch <- c.lines
	ch <- c.bytes
	ch <- c.cursor
	ch <- c.size
}

func (c *engineCollector) Collect(ch chan<- prometheus.Metric) {
	d := c.diag()
	ch <- prometheus.MustNewConstMetric(c.polls, prometheus.CounterValue, float64(d.PollChecks))
	ch <- prometheus.MustNewConstMetric(c.lines, prometheus.CounterValue, float64(d.LinesRead))
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(d.BytesRead))
	ch <- prometheus.MustNewConstMetric(c.cursor, prometheus.GaugeValue, float64(d.Cursor))
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(d.FileSize))
}
