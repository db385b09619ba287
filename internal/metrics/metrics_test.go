package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	// Verify all metrics are registered without conflicts
	metrics := []prometheus.Collector{
		LoginAttemptsTotal,
		LoginDuration,
		PoolSize,
		PoolRotationsTotal,
		RelayRequestsTotal,
		RelayRequestDuration,
		RelayErrorsTotal,
		WSRelaysCurrent,
		WSRelaysTotal,
		WSFramesRelayed,
		WSRelayDuration,
		BuildInfo,
	}

	for _, metric := range metrics {
		desc := make(chan *prometheus.Desc, 1)
		metric.Describe(desc)
		close(desc)

		require.NotNil(t, <-desc, "metric should have a valid descriptor")
	}
}

func TestPoolSizeGauge(t *testing.T) {
	PoolSize.Set(0)
	PoolSize.Set(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(PoolSize))

	PoolSize.Dec()
	assert.Equal(t, 2.0, testutil.ToFloat64(PoolSize))
}

func TestLoginAttemptCounterLabels(t *testing.T) {
	before := testutil.ToFloat64(LoginAttemptsTotal.WithLabelValues("success"))
	LoginAttemptsTotal.WithLabelValues("success").Inc()
	LoginAttemptsTotal.WithLabelValues("missing_totp_secret").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(LoginAttemptsTotal.WithLabelValues("success")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(LoginAttemptsTotal.WithLabelValues("missing_totp_secret")), 1.0)
}
