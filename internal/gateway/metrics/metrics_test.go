//go:build !integration

package metrics_test

import (
	"os"
	"testing"

	"github.com/Arten331/agi-gateway/internal/gateway/metrics"
	"github.com/Arten331/observability/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.MustSetupGlobal(
		logger.WithConfiguration(logger.CoreOptions{
			OutputPath: "stderr",
			Level:      logger.KeyLevelDebug,
			Encoding:   logger.EncodingConsole,
		}),
	)

	os.Exit(m.Run())
}

func TestGatewayMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := metrics.Metrics{Service: registry}
	m.Register()

	m.StoreRequest("store-metric", false)
	m.StoreRequest("store-metric", true)
	m.StoreRequestError("missing")
	m.SessionStarted()
	m.SessionStarted()
	m.SessionFinished()

	for i := 0; i < 3; i++ {
		m.StoreMetric(&metrics.StoredMetric{Phase: "hello", Result: "QUEUE", Campaign: "spring"})
	}

	families, err := registry.Gather()
	require.NoError(t, err)

	values := map[string]float64{}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[family.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[family.GetName()] += metric.GetGauge().GetValue()
			}
		}
	}

	require.Equal(t, 2.0, values["agi_requests_total"])
	require.Equal(t, 1.0, values["agi_request_errors_total"])
	require.Equal(t, 1.0, values["agi_anonymous_calls_total"])
	require.Equal(t, 1.0, values["agi_active_sessions"])
	require.Equal(t, 3.0, values["agi_store_metric_total"])

	count, err := testutil.GatherAndCount(registry, "agi_store_metric_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
