package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload a running forwarder's configuration",
	Long:  "Send SIGHUP to the forwarder process named by the configured PID file.",
	Run: func(cmd *cobra.Command, args []string) {
		pid, err := readDaemonPID()
		if err != nil {
			exitWithError("failed to read PID file", err)
		}
		if err := syscall.Kill(pid, syscall.SIGHUP); err != nil {
			exitWithError(fmt.Sprintf("failed to signal pid %d", pid), err)
		}
		fmt.Printf("sent SIGHUP to pid %d\n", pid)
	},
}
