//go:build !integration

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInit_Defaults(t *testing.T) {
	cfg, err := Init()
	require.NoError(t, err)

	require.Equal(t, appName, cfg.App.Name)
	require.Equal(t, 4573, cfg.Agi.Port)
	require.False(t, cfg.Ari.Enabled)
	require.Empty(t, cfg.QueueService.Kafka.BootstrapServers)
}

func TestInit_Env(t *testing.T) {
	t.Setenv("AGI_PORT", "5000")
	t.Setenv("AGI_RATE_LIMIT", "not a number")
	t.Setenv("ARI_ENABLED", "true")
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "kafka-1, kafka-2,,")

	cfg, err := Init()
	require.NoError(t, err)

	require.Equal(t, 5000, cfg.Agi.Port)
	require.Equal(t, 100, cfg.Agi.RateLimit)
	require.True(t, cfg.Ari.Enabled)
	require.Equal(t, []string{"kafka-1", "kafka-2"}, cfg.QueueService.Kafka.BootstrapServers)
}
