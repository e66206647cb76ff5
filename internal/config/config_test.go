package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "stdio", cfg.Transport.Mode)
	assert.Equal(t, "sqlite", cfg.Sequence.Backend)
	assert.Equal(t, "log", cfg.Notify.Driver)
	assert.Equal(t, "SEA", cfg.Jobs.DefaultMode)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
db:
  path: /tmp/freight.db
sequence:
  backend: redis
redis:
  addr: redis:6379
jobs:
  default_mode: AIR
  documents:
    AIR: [Commercial Invoice, Air Waybill]
`), 0o600))

	t.Setenv("FREIGHT_CONFIG_PATH", path)
	t.Setenv("FREIGHT_SERVER_PORT", "9100")
	t.Setenv("FREIGHT_AUTH_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, "/tmp/freight.db", cfg.DB.Path)
	assert.Equal(t, "redis", cfg.Sequence.Backend)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "AIR", cfg.Jobs.DefaultMode)
	assert.Equal(t, []string{"Commercial Invoice", "Air Waybill"}, cfg.Jobs.Documents["AIR"])
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{name: "port", env: "FREIGHT_SERVER_PORT", val: "eighty"},
		{name: "auth flag", env: "FREIGHT_AUTH_ENABLED", val: "maybe"},
		{name: "transport", env: "FREIGHT_TRANSPORT", val: "carrier-pigeon"},
		{name: "backend", env: "FREIGHT_SEQUENCE_BACKEND", val: "etcd"},
		{name: "amqp without url", env: "FREIGHT_NOTIFY_DRIVER", val: "amqp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			_, err := Load()
			require.Error(t, err)
		})
	}
}
