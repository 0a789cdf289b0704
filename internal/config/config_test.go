package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cefnetd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
cefnetd:
  node:
    ip: "10.0.0.1"
    hostname: "router1"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1", cfg.Node.IP)
	assert.Equal(t, "router1", cfg.Node.Hostname)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, byte(32), cfg.Ccninfo.HopLimit)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfigFile(t, `
cefnetd:
  node:
    ip: "10.0.0.1"
  log:
    level: "verbose"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValidationAlgorithm(t *testing.T) {
	path := writeConfigFile(t, `
cefnetd:
  node:
    ip: "10.0.0.1"
  validation:
    algorithm: "md5"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestResolveNodeIP_Explicit(t *testing.T) {
	ip, err := ResolveNodeIP("192.0.2.5")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.5", ip)
}
