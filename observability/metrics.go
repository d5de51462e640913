package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pqm_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pqm_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	// Key material
	KeyPairsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pqm_keypairs_generated_total",
			Help: "KEM keypairs generated and stored",
		},
	)

	Encapsulations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pqm_encapsulations_total",
			Help: "Encapsulations served to clients",
		},
	)

	// Relay
	MessagesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pqm_messages_submitted_total",
			Help: "Message submissions by outcome",
		},
		[]string{"outcome"}, // accepted, decoding, length_mismatch, invalid, error
	)

	// Presence
	OnlineUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pqm_online_users",
			Help: "Usernames with a live connection",
		},
	)

	PresenceEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pqm_presence_events_dropped_total",
			Help: "Presence updates dropped because a peer buffer was full",
		},
	)

	// Process
	ProcessRSSBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pqm_process_rss_bytes",
			Help: "Resident set size sampled by the heartbeat worker",
		},
	)

	ProcessCPUPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pqm_process_cpu_percent",
			Help: "CPU usage sampled by the heartbeat worker",
		},
	)
)
