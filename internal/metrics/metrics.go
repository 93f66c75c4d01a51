package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrattend_registrations_total",
		Help: "Student registrations by outcome.",
	}, []string{"outcome"})

	Scans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrattend_scans_total",
		Help: "Attendance scans by outcome.",
	}, []string{"outcome"})

	ArtifactsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrattend_artifacts_written_total",
		Help: "QR artifacts written to disk by source.",
	}, []string{"source"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qrattend_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
