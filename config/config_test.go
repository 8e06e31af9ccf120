package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvSocket, "/run/user/1000/wayfire-wayland-1-.socket")
	t.Setenv("WFCTL_LOG_LEVEL", "debug")
	t.Setenv("WFCTL_TIMEOUT", "2s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/run/user/1000/wayfire-wayland-1-.socket", cfg.SocketPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 0.0, cfg.Rate)
	assert.Equal(t, 1, cfg.Burst)
}

func TestLoadMissingSocket(t *testing.T) {
	t.Setenv(EnvSocket, "")

	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrSocketNotSet)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv(EnvSocket, "")
	path := filepath.Join(t.TempDir(), "wfctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("socket: /tmp/wf.sock\nrate: 5\nburst: 3\nmetrics_addr: 127.0.0.1:9321\n"), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/wf.sock", cfg.SocketPath)
	assert.Equal(t, 5.0, cfg.Rate)
	assert.Equal(t, 3, cfg.Burst)
	assert.Equal(t, "127.0.0.1:9321", cfg.MetricsAddr)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv(EnvSocket, "/tmp/from-env.sock")
	path := filepath.Join(t.TempDir(), "wfctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("socket: /tmp/from-file.sock\n"), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.sock", cfg.SocketPath)
}

func TestValidateRejectsNegatives(t *testing.T) {
	cfg := Config{SocketPath: "/tmp/x", Timeout: -time.Second, Rate: -1}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "rate")
}
