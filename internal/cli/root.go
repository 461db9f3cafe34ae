package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/inhost/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the inhost CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "inhost",
		Short: "inhost - in-process integration tests for host plugins",
		Long: `Run integration tests that live inside a host application's plugin.

drive launches the host in automated mode and reads the verdict from its
exit code. simulate boots a simulated host and runs a scenario plugin in it.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewDriveCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))

	return cmd
}

// configureLogging installs the process logger once; INHOST_LOG_* variables
// override the flags.
func configureLogging(opts *RootOptions) {
	cfg := logging.DefaultConfig()
	if opts.Verbose {
		cfg.Level = slog.LevelDebug
	}
	if opts.Format == "json" {
		cfg.Format = "json"
	}
	logging.Configure(cfg)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
