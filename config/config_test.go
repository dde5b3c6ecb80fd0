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
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "pos.db", cfg.Database.Path)
	assert.Equal(t, 2, cfg.Inventory.LowStockThreshold)
	assert.Equal(t, 50, cfg.Alerts.History)
	assert.False(t, cfg.CacheEnabled())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8080
database:
  path: /tmp/shop.db
redis:
  addr: localhost:6379
  ttl: 1m
inventory:
  low_stock_threshold: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("POS_SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/shop.db", cfg.Database.Path)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 5, cfg.Inventory.LowStockThreshold)
	assert.True(t, cfg.CacheEnabled())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("POS_SERVER_PORT", "70000")

	_, err := Load("")
	assert.Error(t, err)
}
