package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// OptionalSourceFile accepts zero or one input file argument.
func OptionalSourceFile(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("accepts at most 1 arg(s), received %d", len(args))
	}
	return nil
}

// RequireLayoutFile validates that exactly one layout_file argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireLayoutFile(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <layout_file>

Usage: %s

Example:
  %s layouts/usa_acs.yaml`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
