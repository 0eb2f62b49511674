package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Source.PollInterval)
	assert.True(t, cfg.Source.ReplayAll)
	assert.Equal(t, 100, cfg.Source.TailLines)
	assert.Equal(t, "127.0.0.1:5025", cfg.Server.ListenAddress)
	assert.Equal(t, 500, cfg.History.MaxEvents)
	assert.Equal(t, 1000, cfg.History.MaxLines)
	assert.Equal(t, 2000, cfg.History.QueueSize)
	assert.Equal(t, 10*time.Second, cfg.Correlation.Horizon)
	assert.Equal(t, 200*time.Millisecond, cfg.Correlation.Proximity)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.False(t, cfg.DebugLog.Enabled)
}

func TestLoad_FromFile(t *testing.T) {
	content := `
source:
  path: /games/starcitizen/Game.log
  poll_interval: 250ms
  replay_all: false
  tail_lines: 50
server:
  listen_address: 0.0.0.0:9000
correlation:
  horizon: 5s
  proximity: 100ms
log_level: debug
log_format: json
`
	path := filepath.Join(t.TempDir(), "starlogs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/games/starcitizen/Game.log", cfg.Source.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Source.PollInterval)
	assert.False(t, cfg.Source.ReplayAll)
	assert.Equal(t, 50, cfg.Source.TailLines)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.ListenAddress)
	assert.Equal(t, 5*time.Second, cfg.Correlation.Horizon)
	assert.Equal(t, 100*time.Millisecond, cfg.Correlation.Proximity)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)

	// Unset fields keep their defaults.
	assert.Equal(t, 500, cfg.History.MaxEvents)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults pass", mutate: func(*Config) {}, wantErr: false},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Source.PollInterval = 0 },
			wantErr: true,
		},
		{
			name:    "queue smaller than history",
			mutate:  func(c *Config) { c.History.QueueSize = 100 },
			wantErr: true,
		},
		{
			name:    "proximity above horizon",
			mutate:  func(c *Config) { c.Correlation.Proximity = time.Minute },
			wantErr: true,
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: true,
		},
		{
			name:    "negative history cap",
			mutate:  func(c *Config) { c.History.MaxEvents = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
