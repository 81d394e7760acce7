package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RegistrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Total successful user registrations",
		},
	)

	ProfileWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_writes_total",
			Help: "Total profile writes by outcome",
		},
		[]string{"outcome"}, // created|updated
	)

	ProfileSearchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_searches_total",
			Help: "Total profile directory searches",
		},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Background tasks queued or running",
		},
	)
)

// handler for the /metrics endpoint
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RegistrationsTotal)
	prometheus.MustRegister(ProfileWritesTotal)
	prometheus.MustRegister(ProfileSearchesTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}
