// Package cmd provides CLI commands for jmxstat.
package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information, injected at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// exit terminates the process with the given status.
var exit = os.Exit

const usageText = `Usage:
jmxstat <host:port> [--performGC] [--contention|--disable-contention] [object[attribute.field,...] ...] [interval [count]]

Ambient options:
  --config=<path>      configuration file (YAML)
  --log-level=<level>  debug, info, warn or error

Subcommands:
  jmxstat version
  jmxstat validate [-c config.yaml] [object[attribute,...] ...]`

// rootCmd represents the base command. Its arguments are positional tokens
// resolved by the options package, so cobra's flag parsing is disabled.
var rootCmd = &cobra.Command{
	Use:   "jmxstat <host:port> [flags] [object[attribute.field,...] ...] [interval [count]]",
	Short: "Poll JMX attributes of a remote JVM and print them as tab-separated lines",
	Long: `jmxstat connects to a JVM through its Jolokia agent, samples the given
attributes at a fixed interval and prints one tab-separated line per sample.

Examples:
  # Heap usage every 5 seconds
  jmxstat localhost:8778 'java.lang:type=Memory[HeapMemoryUsage.used,HeapMemoryUsage.max]'

  # Thread count and contention totals, 10 samples one second apart
  jmxstat localhost:8778 --contention 'java.lang:type=Threading[ThreadCount]' 1 10

  # Trigger a garbage collection and exit
  jmxstat localhost:8778 --performGC`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	Run: func(cmd *cobra.Command, args []string) {
		exit(runStat(cmd.Context(), args, cmd.OutOrStdout(), cmd.ErrOrStderr()))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// printUsage writes the usage text, preceded by reason if any.
func printUsage(w io.Writer, reason string) {
	if reason != "" {
		fmt.Fprintln(w, reason)
	}
	fmt.Fprintln(w, usageText)
}

// isHelp reports whether args ask for the usage text.
func isHelp(args []string) bool {
	return len(args) == 0 || args[0] == "-h" || args[0] == "--help"
}

// GetVersionInfo returns formatted version information.
func GetVersionInfo() string {
	return Version + "\n" +
		"Build Time: " + BuildTime + "\n" +
		"Git Commit: " + GitCommit + "\n" +
		"Go Version: " + runtime.Version() + "\n" +
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH
}
