// Package cli provides the command-line interface for the log reader.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "log-reader",
		Short: "Store, query and export vehicle diagnostic logs",
		Long: `log-reader parses vehicle diagnostic log files of the form

  [<timestamp>] [VEHICLE_ID:<id>] [<level>] [CODE:<code>] [<message>]

into a store and serves them over HTTP with filtering, sorting,
pagination and CSV export.

Settings come from configs/config.yml (or --config) and LOGREADER_*
environment variables, e.g. LOGREADER_STORE_DRIVER=memory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default configs/config.yml)")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))
	rootCmd.AddCommand(newConfigCommand(opts))

	return rootCmd
}
