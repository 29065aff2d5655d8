package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.ServerConfig.ListenAddr)
	assert.Equal(t, time.Duration(0), cfg.ServerConfig.IdleTimeout)
}

func TestLoadConfig_DecodesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "server:\n  address: \":9001\"\n  idle_timeout: \"45s\"\n  metrics_addr: \":9090\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9001", cfg.ServerConfig.ListenAddr)
	assert.Equal(t, 45*time.Second, cfg.ServerConfig.IdleTimeout)
	assert.Equal(t, ":9090", cfg.ServerConfig.MetricsAddr)
}

func TestLoadConfig_InvalidIdleTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "server:\n  idle_timeout: \"not-a-duration\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, err := loadConfig(path)
	assert.Error(t, err)
}
