package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
auth:
  access_secret: access-secret-value
  refresh_secret: refresh-secret-value
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, v, err := Load(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "tokengate", cfg.Auth.AppName)
	assert.Equal(t, "refresh", cfg.Auth.Mode)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessExpire)
	assert.Equal(t, 720*time.Hour, cfg.Auth.RefreshExpire)
	assert.True(t, cfg.Auth.AccessUnique)
	assert.True(t, cfg.Auth.AccessValid)
	assert.Equal(t, "header", cfg.Auth.TokenCarrier)
	assert.Equal(t, "Authorization", cfg.Auth.TokenKey)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadOverridesFromFile(t *testing.T) {
	cfg, _, err := Load(writeConfigFile(t, `
server:
  port: 9443
auth:
  app_name: edge-gate
  mode: access
  access_expire: 5m
  access_secret: access-secret-value
  refresh_secret: refresh-secret-value
  token_carrier: cookie
  token_key: session
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, 9443, cfg.Server.Port)
	assert.Equal(t, "edge-gate", cfg.Auth.AppName)
	assert.Equal(t, "access", cfg.Auth.Mode)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessExpire)
	assert.Equal(t, "cookie", cfg.Auth.TokenCarrier)
	assert.Equal(t, "session", cfg.Auth.TokenKey)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadBareSecondExpiry(t *testing.T) {
	cfg, _, err := Load(writeConfigFile(t, `
auth:
  access_expire: 1800
  refresh_expire: 2592000
  access_secret: access-secret-value
  refresh_secret: refresh-secret-value
`))
	require.NoError(t, err)

	// Bare numbers are seconds, not nanoseconds.
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessExpire)
	assert.Equal(t, 720*time.Hour, cfg.Auth.RefreshExpire)
}

func TestLoadBareSecondExpiryFromEnv(t *testing.T) {
	t.Setenv("TOKENGATE_AUTH_ACCESS_EXPIRE", "900")

	cfg, _, err := Load(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessExpire)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("TOKENGATE_SERVER_PORT", "7070")

	cfg, _, err := Load(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, _, err := Load(writeConfigFile(t, minimalConfig))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "missing app name",
			mutate:  func(cfg *Config) { cfg.Auth.AppName = "" },
			wantErr: "app_name",
		},
		{
			name:    "bad mode",
			mutate:  func(cfg *Config) { cfg.Auth.Mode = "session" },
			wantErr: "auth.mode",
		},
		{
			name:    "refresh must outlive access",
			mutate:  func(cfg *Config) { cfg.Auth.RefreshExpire = cfg.Auth.AccessExpire },
			wantErr: "refresh_expire",
		},
		{
			name:    "identical secrets",
			mutate:  func(cfg *Config) { cfg.Auth.RefreshSecret = cfg.Auth.AccessSecret },
			wantErr: "must differ",
		},
		{
			name:    "missing secrets without vault",
			mutate:  func(cfg *Config) { cfg.Auth.AccessSecret = "" },
			wantErr: "access_secret",
		},
		{
			name:    "bad carrier",
			mutate:  func(cfg *Config) { cfg.Auth.TokenCarrier = "query" },
			wantErr: "token_carrier",
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Server.Port = 0 },
			wantErr: "server.port",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("vault supplies secrets", func(t *testing.T) {
		cfg := base()
		cfg.Auth.AccessSecret = ""
		cfg.Auth.RefreshSecret = ""
		cfg.Vault.Enabled = true
		assert.NoError(t, cfg.Validate())
	})
}
