package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cefore-go/cefnetd/internal/daemon"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the forwarder in foreground",
	Long: `Load configuration, build the FIB/face/control-plane machinery, and run
the forwarding loop in foreground until a shutdown signal (SIGTERM/SIGINT)
or a reload signal (SIGHUP) arrives.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(configFile)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}
	if err := d.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	return d.Run()
}
