package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReaderConfig_Defaults(t *testing.T) {
	cfg, err := LoadReaderConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "default-group", cfg.GroupID)
	assert.Equal(t, "flight-searches", cfg.InputTopic)
	assert.Equal(t, "decorated-recos", cfg.OutputTopic)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.False(t, cfg.StrictDecode)
	assert.Equal(t, "etc/eurofxref.csv", cfg.RatesFile)
	assert.Empty(t, cfg.MongoURI)
	assert.Equal(t, time.Second, cfg.PollTimeout)
}

func TestLoadReaderConfig_Overrides(t *testing.T) {
	t.Setenv("KAFKA_GROUP_ID", "enrichers")
	t.Setenv("STRICT_DECODE", "true")
	t.Setenv("POLL_TIMEOUT", "5")
	t.Setenv("OUTPUT_FORMAT", "pretty_json")
	t.Setenv("NATS_RECONNECT_WAIT", "not-a-number")

	cfg, err := LoadReaderConfig()
	require.NoError(t, err)

	assert.Equal(t, "enrichers", cfg.GroupID)
	assert.True(t, cfg.StrictDecode)
	assert.Equal(t, 5*time.Second, cfg.PollTimeout)
	assert.Equal(t, "pretty_json", cfg.OutputFormat)
	assert.Equal(t, 2*time.Second, cfg.NatsReconnectWait)
}

func TestLoadWriterConfig_Defaults(t *testing.T) {
	cfg, err := LoadWriterConfig()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "reco-writers", cfg.GroupID)
	assert.Equal(t, "decorated-recos", cfg.Topic)
	assert.Equal(t, "localhost", cfg.PGHost)
	assert.Equal(t, "5432", cfg.PGPort)
	assert.Equal(t, "flightdb", cfg.PGDatabase)
	assert.Equal(t, "postgres", cfg.PGUser)
	assert.Equal(t, "flight-recos", cfg.PGTable)
}
