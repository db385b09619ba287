package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login metrics
var (
	// LoginAttemptsTotal tracks startup login attempts by result
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total login attempts by result (success/missing_totp_secret/totp_computation_failed/totp_verification_failed/upstream_unreachable)",
		},
		[]string{"result"},
	)

	// LoginDuration tracks login handshake duration in seconds
	LoginDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "login_duration_seconds",
			Help:    "Login handshake duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Session pool metrics
var (
	// PoolSize tracks the number of authenticated sessions currently pooled
	PoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "session_pool_size",
			Help: "Number of authenticated sessions currently in the pool",
		},
	)

	// PoolRotationsTotal tracks explicit pool rotations
	PoolRotationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_pool_rotations_total",
			Help: "Total explicit session pool rotations",
		},
	)
)

// HTTP relay metrics
var (
	// RelayRequestsTotal tracks proxied HTTP requests by method and upstream status
	RelayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_requests_total",
			Help: "Total proxied HTTP requests by method and upstream status",
		},
		[]string{"method", "status"},
	)

	// RelayRequestDuration tracks proxied request duration in seconds
	RelayRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_request_duration_seconds",
			Help:    "Proxied HTTP request duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// RelayErrorsTotal tracks relay failures by error type
	RelayErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_errors_total",
			Help: "Total relay failures by error type",
		},
		[]string{"type"},
	)
)

// WebSocket relay metrics
var (
	// WSRelaysCurrent tracks currently active WebSocket relay sessions
	WSRelaysCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_relays_current",
			Help: "Currently active WebSocket relay sessions",
		},
	)

	// WSRelaysTotal tracks WebSocket relay attempts by result
	WSRelaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_relays_total",
			Help: "Total WebSocket relay attempts by result (started/pool_empty/missing_token/upstream_dial_failed/upgrade_failed)",
		},
		[]string{"result"},
	)

	// WSFramesRelayed tracks relayed WebSocket frames by direction
	WSFramesRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_frames_relayed_total",
			Help: "Total WebSocket frames relayed by direction (client_to_upstream/upstream_to_client)",
		},
		[]string{"direction"},
	)

	// WSRelayDuration tracks WebSocket relay session duration
	WSRelayDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "websocket_relay_duration_seconds",
			Help:    "WebSocket relay session duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
		},
	)
)

// Build information metrics
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)
