package health

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	queueDepthDesc = prometheus.NewDesc(
		"pipeline_queue_depth",
		"Current depth of each stage queue.",
		[]string{"queue"}, nil,
	)
	jobsDesc = prometheus.NewDesc(
		"pipeline_jobs",
		"Number of tracked jobs by status.",
		[]string{"status"}, nil,
	)
	healthyDesc = prometheus.NewDesc(
		"pipeline_healthy",
		"Whether all health probes pass (1) or not (0).",
		nil, nil,
	)
)

// Collector exposes the Reporter's aggregates as Prometheus metrics. Each
// scrape runs a fresh probe and aggregation pass.
type Collector struct {
	reporter *Reporter
	timeout  time.Duration
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector wraps a Reporter for Prometheus registration.
func NewCollector(r *Reporter) *Collector {
	return &Collector{reporter: r, timeout: 5 * time.Second}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- queueDepthDesc
	ch <- jobsDesc
	ch <- healthyDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	h, err := c.reporter.Check(ctx)
	if err == nil {
		v := 0.0
		if h.Healthy() {
			v = 1.0
		}
		ch <- prometheus.MustNewConstMetric(healthyDesc, prometheus.GaugeValue, v)
	}

	m, err := c.reporter.Collect(ctx)
	if err != nil {
		c.reporter.logger.Warn("metric collection failed", "error", err)
		return
	}
	for queue, depth := range m.QueueDepths {
		ch <- prometheus.MustNewConstMetric(queueDepthDesc, prometheus.GaugeValue,
			float64(depth), queue)
	}
	for status, count := range m.JobCounts {
		ch <- prometheus.MustNewConstMetric(jobsDesc, prometheus.GaugeValue,
			float64(count), string(status))
	}
}
