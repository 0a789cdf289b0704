package daemon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDaemon_ReloadLogLevel(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, tmpDir)

	d, err := New(configPath)
	require.NoError(t, err)
	require.NoError(t, d.Start())
	defer d.Stop()

	require.Equal(t, "debug", d.config.Log.Level)

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	updated := strings.Replace(string(content), "level: debug", "level: info", 1)
	require.NoError(t, os.WriteFile(configPath, []byte(updated), 0644))

	require.NoError(t, d.Reload())
	require.Equal(t, "info", d.config.Log.Level)
}

func TestDaemon_ReloadPicksUpNewFIBRoute(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, tmpDir)
	fibPath := filepath.Join(tmpDir, "fib.conf")

	d, err := New(configPath)
	require.NoError(t, err)
	require.NoError(t, d.Start())
	defer d.Stop()

	require.Equal(t, 0, d.table.Len())

	require.NoError(t, os.WriteFile(fibPath, []byte("ccnx:/a/b udp 127.0.0.1:9999\n"), 0644))
	require.NoError(t, d.Reload())

	require.Equal(t, 1, d.table.Len())
}
