// Command cefnetd is the forwarder process: it loads configuration,
// starts the FIB/face/control-plane machinery, and runs until a
// shutdown signal arrives. See the cobra subcommands in this package
// for the start/stop/status/reload lifecycle controls.
package main

func main() {
	Execute()
}
