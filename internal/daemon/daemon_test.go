package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()
	configPath := filepath.Join(tmpDir, "config.yml")
	content := `
cefnetd:
  node:
    ip: 127.0.0.1
    hostname: test-cefnetd-001
  control:
    socket: ` + filepath.Join(tmpDir, "cefnetd.sock") + `
    pid_file: ` + filepath.Join(tmpDir, "cefnetd.pid") + `
  log:
    level: debug
    format: text
  metrics:
    enabled: false
  fib:
    config_file: ` + filepath.Join(tmpDir, "fib.conf") + `
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func TestDaemon_StartStopIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, tmpDir)

	d, err := New(configPath)
	require.NoError(t, err)
	require.NoError(t, d.Start())

	socketPath := filepath.Join(tmpDir, "cefnetd.sock")
	pidFile := filepath.Join(tmpDir, "cefnetd.pid")

	if _, err := os.Stat(pidFile); os.IsNotExist(err) {
		t.Errorf("PID file was not created: %s", pidFile)
	}
	time.Sleep(100 * time.Millisecond)
	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		t.Errorf("control socket was not created: %s", socketPath)
	}

	runDone := make(chan error, 1)
	go func() { runDone <- d.Run() }()
	time.Sleep(100 * time.Millisecond)

	d.TriggerShutdown()

	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop within timeout")
	}

	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Errorf("PID file was not removed after shutdown: %s", pidFile)
	}
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Errorf("control socket was not removed after shutdown: %s", socketPath)
	}
}
