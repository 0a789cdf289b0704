// Command ccninfo is the diagnostic CLI of spec.md §6: a single command
// (no subcommands, since the wire spec names no verbs) that sends one
// discovery request to a local forwarder and prints every reply
// collected within the collection window.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cefore-go/cefnetd/internal/ccninfo"
	"github.com/cefore-go/cefnetd/internal/wire"
	"github.com/cefore-go/cefnetd/internal/wire/validate"
)

var (
	configDir string
	port      int

	fullDiscover bool
	noCache      bool
	publisher    bool
	hopLimit     int
	skipHop      int
	validatorAlg string
)

// rootCmd is ccninfo's single command: `ccninfo <name_prefix> [flags]`.
var rootCmd = &cobra.Command{
	Use:   "ccninfo <name_prefix>",
	Short: "Send a Ccninfo discovery request and print the collected replies",
	Long: `ccninfo sends a discovery/trace request for a name prefix to the local
forwarder and prints every reply collected within the 7-second collection
window, per spec.md §6.`,
	Args: cobra.ExactArgs(1),
	RunE: runCcninfo,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "d", "",
		"configuration directory (discovered via a companion client module)")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 9896,
		"forwarder port")

	rootCmd.Flags().BoolVarP(&fullDiscover, "full-discover", "f", false, "set FullDiscover flag")
	rootCmd.Flags().BoolVarP(&noCache, "no-cache", "n", false, "clear Cache flag")
	rootCmd.Flags().BoolVarP(&publisher, "publisher", "o", false, "set Publisher flag")
	rootCmd.Flags().IntVarP(&hopLimit, "hop-limit", "r", 32, "hop limit (1..255)")
	rootCmd.Flags().IntVarP(&skipHop, "skip-hop", "s", 0, "skip-hop count (must be < hop-limit)")
	rootCmd.Flags().StringVarP(&validatorAlg, "validator", "v", "", "validation algorithm (crc32|sha256)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(-1)
	}
}

func runCcninfo(cmd *cobra.Command, args []string) error {
	if hopLimit < 1 || hopLimit > 255 {
		exitWithError(fmt.Sprintf("hop-limit %d out of range 1..255", hopLimit), nil, -1)
	}
	if skipHop >= hopLimit {
		exitWithError(fmt.Sprintf("skip-hop %d must be less than hop-limit %d", skipHop, hopLimit), nil, -1)
	}

	var v wire.Validator
	if validatorAlg != "" {
		factory, err := validate.GetFactory(validatorAlg)
		if err != nil {
			exitWithError(fmt.Sprintf("unknown validation algorithm %q", validatorAlg), err, -1)
		}
		v = factory()
	}

	name, err := wire.URIToName(args[0])
	if err != nil {
		exitWithError(fmt.Sprintf("invalid name prefix %q", args[0]), err, -1)
	}

	flags := byte(0)
	if fullDiscover {
		flags |= ccninfo.FlagFullDiscover
	}
	if !noCache {
		flags |= ccninfo.FlagCache
	}
	if publisher {
		flags |= ccninfo.FlagPublisher
	}

	req, err := ccninfo.NewRequest(name, byte(hopLimit), byte(skipHop), flags, nil)
	if err != nil {
		exitWithError("failed to build request", err, -1)
	}

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		exitWithError("failed to connect to forwarder", err, -2)
	}
	defer conn.Close()

	client := ccninfo.NewClient(conn, ccninfo.DefaultCollectionWindow)
	handle, err := client.Send(req, v)
	if err != nil {
		exitWithError("failed to send request", err, -2)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	results := client.Collect(handle, quit)
	printResults(cmd, results)
	return nil
}

func printResults(cmd *cobra.Command, results []*ccninfo.Result) {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "no replies received")
		return
	}
	for i, res := range results {
		fmt.Fprintf(out, "reply %d: retcode=0x%02x rtt=%s name=%s\n",
			i, res.Reply.RetCode, res.RTT, wire.NameToURI(res.Reply.Name))
		for j, hop := range res.HopLatencies {
			fmt.Fprintf(out, "  hop %d: %s\n", j, hop)
		}
		for _, rb := range res.Reply.Replies {
			fmt.Fprintf(out, "  cache entry: name=%s size=%d count=%d\n",
				wire.NameToURI(rb.Name), rb.ContentSize, rb.ContentCount)
		}
	}
}

func exitWithError(msg string, err error, code int) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(code)
}
