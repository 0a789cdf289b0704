package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the forwarder is running",
	Run: func(cmd *cobra.Command, args []string) {
		pid, err := readDaemonPID()
		if err != nil {
			fmt.Println("not running (no pid file)")
			return
		}
		// Signal 0 performs no-op existence/permission checking only.
		if err := syscall.Kill(pid, 0); err != nil {
			fmt.Printf("not running (stale pid %d)\n", pid)
			return
		}
		fmt.Printf("running (pid %d)\n", pid)
	},
}
