package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/inhost/internal/driver"
)

// DriveOptions holds flags for the drive command.
type DriveOptions struct {
	*RootOptions

	// ShowOutput echoes the host's captured stdout and stderr (text format).
	ShowOutput bool
}

// NewDriveCommand creates the drive command.
func NewDriveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DriveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "drive <config>",
		Short: "Run the host in automated mode and report the verdict",
		Long: `Launch the host described by a YAML or CUE config with
RUN_INHOST_INTEGRATION_TEST set, wait for it to exit, and report.

Exit codes:
  0 - All steps passed (host exited 0)
  1 - A step failed (host exited 172) or the host crashed
  2 - Command error (bad config, host not startable)

Examples:
  inhost drive ./drive.yaml
  inhost drive ./drive.cue --format json
  inhost drive ./drive.yaml --show-output`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrive(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.ShowOutput, "show-output", false, "echo the host's stdout and stderr")

	return cmd
}

func runDrive(opts *DriveOptions, configPath string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := driver.LoadConfig(configPath)
	if err != nil {
		_ = out.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	// Forward SIGINT/SIGTERM to the host by cancelling its context.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping host", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := driver.Run(ctx, cfg)
	if err != nil {
		_ = out.Error(ErrCodeHostStart, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to run host", err)
	}

	if opts.Format == "json" {
		if result.Passed() {
			if err := out.Success(result); err != nil {
				return err
			}
			return nil
		}
		_ = out.Error(ErrCodeTestFailed, result.Reason, result)
		return NewExitError(ExitFailure, fmt.Sprintf("integration test %s: %s", result.Verdict, result.Reason))
	}

	writeDriveText(cmd, opts, result)
	if !result.Passed() {
		return NewExitError(ExitFailure, fmt.Sprintf("integration test %s: %s", result.Verdict, result.Reason))
	}
	return nil
}

func writeDriveText(cmd *cobra.Command, opts *DriveOptions, result *driver.Result) {
	w := cmd.OutOrStdout()

	if opts.ShowOutput {
		writeBlock(cmd, "host stdout", result.Stdout)
		writeBlock(cmd, "host stderr", result.Stderr)
	}

	for _, step := range result.Steps {
		fmt.Fprintf(w, "  step: %s\n", step)
	}

	switch result.Verdict {
	case driver.VerdictPassed:
		fmt.Fprintf(w, "✓ passed (exit %d)\n", result.ExitCode)
	default:
		fmt.Fprintf(w, "✗ %s (exit %d)\n", result.Verdict, result.ExitCode)
		fmt.Fprintf(w, "  %s\n", result.Reason)
	}

	if opts.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "duration: %s\n", result.Duration)
	}
}

func writeBlock(cmd *cobra.Command, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "--- %s\n", title)
	fmt.Fprint(w, body)
	if !strings.HasSuffix(body, "\n") {
		fmt.Fprintln(w)
	}
}
