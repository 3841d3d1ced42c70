package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.1, cfg.Pipeline.AirportBoxHalfWidthDeg, 1e-9)
	assert.InDelta(t, 1000.0, cfg.Pipeline.LowAltitudeM, 1e-9)
	assert.InDelta(t, 200.0, cfg.Pipeline.AltitudeJumpM, 1e-9)
	assert.InDelta(t, 1.5, cfg.Pipeline.IQRMultiplier, 1e-9)
	assert.Equal(t, 4, cfg.Pipeline.MinQuartilePoints)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ALTITUDE_JUMP_M", "350")
	t.Setenv("IQR_MULTIPLIER", "3.0")
	t.Setenv("WORKER_POOL_SIZE", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 350.0, cfg.Pipeline.AltitudeJumpM, 1e-9)
	assert.InDelta(t, 3.0, cfg.Pipeline.IQRMultiplier, 1e-9)
	assert.Equal(t, 2, cfg.Pipeline.WorkerPoolSize)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "Negative jump threshold", key: "ALTITUDE_JUMP_M", value: "-5"},
		{name: "Zero IQR multiplier", key: "IQR_MULTIPLIER", value: "0"},
		{name: "Zero worker pool", key: "WORKER_POOL_SIZE", value: "0"},
		{name: "Quartile points below minimum", key: "MIN_QUARTILE_POINTS", value: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
