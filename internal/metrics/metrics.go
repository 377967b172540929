// Package metrics exposes Prometheus collectors for photo ingestion and the HTTP API.
//
// Labels are kept to bounded sets: ingestion outcomes and pipeline stage names
// are fixed strings, and HTTP routes use the registered chi pattern rather
// than the raw URL path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the service registers.
type Metrics struct {
	Photos        *prometheus.CounterVec
	DownloadBytes prometheus.Counter
	GroupUpserts  *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// Passing a fresh prometheus.NewRegistry() keeps tests isolated.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Photos: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "photobot",
				Name:      "photos_total",
				Help:      "Photo events processed, by outcome and the stage they ended in.",
			},
			[]string{"outcome", "stage"},
		),
		DownloadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "photobot",
				Name:      "download_bytes_total",
				Help:      "Bytes written to the upload directory.",
			},
		),
		GroupUpserts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "photobot",
				Name:      "group_upserts_total",
				Help:      "Group upserts, by result.",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Photos, m.DownloadBytes, m.GroupUpserts, m.HTTPRequests, m.HTTPLatency)
	}
	return m
}
