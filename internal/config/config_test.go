package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Equal(t, 1, cfg.Scheduler.PollSeconds)
	require.Equal(t, 10, cfg.Scheduler.BatchSize)
	require.Equal(t, 1024, cfg.WebSocket.ReadBufferSize)
	require.NotEmpty(t, cfg.Database.URL)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
	}{
		{
			name:      "valid_defaults",
			mutate:    func(c *Config) {},
			expectErr: false,
		},
		{
			name:      "missing_port",
			mutate:    func(c *Config) { c.Server.Port = "" },
			expectErr: true,
		},
		{
			name:      "missing_db_url",
			mutate:    func(c *Config) { c.Database.URL = "" },
			expectErr: true,
		},
		{
			name:      "missing_redis_addr",
			mutate:    func(c *Config) { c.Redis.Addr = "" },
			expectErr: true,
		},
		{
			name:      "zero_poll_interval",
			mutate:    func(c *Config) { c.Scheduler.PollSeconds = 0 },
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			require.NoError(t, err)

			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
