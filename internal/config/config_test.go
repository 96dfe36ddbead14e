package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  env: development
mongo:
  uri: mongodb://localhost:27017
  db: community
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "8084", cfg.Server.Port)
	require.Equal(t, 15*time.Second, cfg.ReadTimeout)
	require.Equal(t, 5*time.Minute, cfg.DirectoryTTL)
	require.True(t, cfg.Development())
}

func TestLoadReadsValues(t *testing.T) {
	path := writeConfig(t, `
app:
  env: production
server:
  port: "9000"
  read_timeout_seconds: 30
redis:
  addr: redis:6379
  ttl_seconds: 60
kafka:
  brokers:
    - broker-1:9092
    - broker-2:9092
  topic: message-events
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Server.Port)
	require.Equal(t, 30*time.Second, cfg.ReadTimeout)
	require.Equal(t, time.Minute, cfg.DirectoryTTL)
	require.Len(t, cfg.Kafka.Brokers, 2)
	require.False(t, cfg.Development())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
