package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flrload",
	Short: "Load fixed-length census extracts into PostgreSQL",
	Long: `flrload reads hierarchical fixed-length-record (FLR) files such as IPUMS USA
extracts, decodes every line with the layout of its record type, and bulk
loads households and people into PostgreSQL in batches of 25,000 records.

Layouts are built in for the IPUMS USA ACS extract and can be replaced with a
YAML layout file (see 'flrload layout show').

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration, layout or synthetic fields
  11 - Database connection failed
  20 - Input line could not be classified or decoded
  21 - PostgreSQL rejected a batch
  22 - Interrupted (Ctrl+C, SIGTERM or --timeout)`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("config", "",
		"Path to flrload.yaml (default: ./flrload.yaml if present)")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return ""
	}
	return path
}
