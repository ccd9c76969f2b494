// Package cli provides the pystub-gen command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// Execute creates and runs the root command.
func Execute() error {
	rootCmd := &cobra.Command{
		Use:           "pystub-gen",
		Short:         "Generate Python stub files and API documentation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newGenerateCommand())

	return rootCmd.Execute()
}
