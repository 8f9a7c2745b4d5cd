package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jmxstat/internal/config"
	"jmxstat/internal/options"
	"jmxstat/internal/service"
)

var validateConfigFile string // Config file path

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate [object[attribute.field,...] ...]",
	Short: "Validate the configuration and attribute lists",
	Long: `Load and validate the configuration file, the attributes file it names and
any attribute lists given as arguments, without connecting to a JVM.

Example:
  jmxstat validate -c jmxstat.yaml 'java.lang:type=Memory[HeapMemoryUsage.used]'`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		if status := runValidate(validateConfigFile, args, cmd.OutOrStdout(), cmd.ErrOrStderr()); status != service.ExitOK {
			exit(status)
		}
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfigFile, "config", "c", "", "config file path (defaults and environment only when empty)")
	rootCmd.AddCommand(validateCmd)
}

// runValidate checks the configuration and attribute tokens and returns the
// exit status.
func runValidate(configPath string, tokens []string, stdout, stderr io.Writer) int {
	// Load and validate configuration (Load internally calls Validate)
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "configuration invalid: %v\n", err)
		return service.ExitUsage
	}

	if cfg.Output.AttributesFile != "" {
		fileTokens, err := config.LoadAttributeTokens(cfg.Output.AttributesFile)
		if err != nil {
			fmt.Fprintf(stderr, "attributes file invalid: %v\n", err)
			return service.ExitUsage
		}
		tokens = append(fileTokens, tokens...)
	}

	count := 0
	for _, token := range tokens {
		refs, ok, err := options.ParseAttributeToken(token)
		if err != nil {
			fmt.Fprintf(stderr, "attribute list invalid: %v\n", err)
			return service.ExitUsage
		}
		if !ok {
			fmt.Fprintf(stderr, "not an attribute list: %q\n", token)
			return service.ExitUsage
		}
		count += len(refs)
	}

	source := configPath
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintf(stdout, "configuration valid: %s (%d attributes)\n", source, count)
	return service.ExitOK
}
