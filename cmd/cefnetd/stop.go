package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cefore-go/cefnetd/internal/config"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running forwarder",
	Long:  "Send SIGTERM to the forwarder process named by the configured PID file.",
	Run: func(cmd *cobra.Command, args []string) {
		pid, err := readDaemonPID()
		if err != nil {
			exitWithError("failed to read PID file", err)
		}
		if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
			exitWithError(fmt.Sprintf("failed to signal pid %d", pid), err)
		}
		fmt.Printf("sent SIGTERM to pid %d\n", pid)
	},
}

// readDaemonPID loads the configured PID file path and parses its
// contents, matching what daemon.writePIDFile wrote on start.
func readDaemonPID() (int, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(cfg.Control.PIDFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", cfg.Control.PIDFile, err)
	}
	return pid, nil
}
