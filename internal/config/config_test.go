package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, int64(32768), cfg.ReadLimit)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 64, cfg.SendBuffer)
	assert.Equal(t, 10*time.Minute, cfg.IdleWindow)
	assert.Equal(t, 1000, cfg.MaxPinAttempts)
	assert.Equal(t, 100, cfg.MaxParticipantsLimit)
	assert.Equal(t, "primary", cfg.DeviceMatch)
	assert.Equal(t, 2*time.Second, cfg.LookupTimeout)
	assert.Equal(t, 2000, cfg.MaxMessageLen)
	assert.Equal(t, 30, cfg.JoinRatePerMinute)
	assert.True(t, cfg.TrustForwardedFor)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: debug
port: 8081
idle_window: 30s
device_match: exact
log_level: debug
trust_forwarded_for: false
`), 0o600))
	t.Setenv("CHATSALA_MAX_MESSAGE_LEN", "500")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.IdleWindow)
	assert.Equal(t, "exact", cfg.DeviceMatch)
	assert.Equal(t, 500, cfg.MaxMessageLen)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.False(t, cfg.TrustForwardedFor)
}

func TestLoadFileRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("idle_window: 0s\n"), 0o600))
	_, err := LoadFile(path)
	assert.Error(t, err)
}
