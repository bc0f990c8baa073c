package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics bundles the prometheus collectors exposed on /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	VideosEnqueued  prometheus.Counter
	VideosCompleted prometheus.Counter
	VideosFailed    prometheus.Counter
	CreditsSpent    prometheus.Counter
}

// NewMetrics registers the service collectors on a fresh registry.
func NewMetrics(subsystem string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "videoserver",
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "videoserver",
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		VideosEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "videoserver",
			Subsystem: subsystem,
			Name:      "videos_enqueued_total",
			Help:      "Video generation tasks accepted.",
		}),
		VideosCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "videoserver",
			Subsystem: subsystem,
			Name:      "videos_completed_total",
			Help:      "Video generation tasks finished successfully.",
		}),
		VideosFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "videoserver",
			Subsystem: subsystem,
			Name:      "videos_failed_total",
			Help:      "Video generation tasks finished with an error.",
		}),
		CreditsSpent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "videoserver",
			Subsystem: subsystem,
			Name:      "credits_spent_total",
			Help:      "Credits consumed by accepted tasks.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDuration,
		m.VideosEnqueued,
		m.VideosCompleted,
		m.VideosFailed,
		m.CreditsSpent,
	)
	return m
}
