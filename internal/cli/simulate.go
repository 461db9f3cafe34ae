package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/inhost/internal/harness"
	"github.com/roach88/inhost/internal/host"
	"github.com/roach88/inhost/internal/simhost"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Cycles int // overrides the scenario's cycle count when > 0

	// Exit and Env replace os.Exit and os.LookupEnv inside the harness
	// (for testing). Nil means the real ones.
	Exit func(int)
	Env  func(string) (string, bool)
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}
	return newSimulateCommand(opts)
}

func newSimulateCommand(opts *SimulateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run a scenario plugin inside a simulated host",
		Long: `Boot a simulated host, load a plugin whose test steps come from the
scenario file, press the scenario's commands and run the host loop.

With RUN_INHOST_INTEGRATION_TEST set the harness fires on the first cycle
and ends this process with exit code 0 or 172, which makes simulate a host
that "inhost drive" can launch.

Examples:
  inhost simulate ./scenarios/smoke.yaml
  RUN_INHOST_INTEGRATION_TEST=1 inhost simulate ./scenarios/smoke.yaml
  inhost simulate ./scenarios/smoke.yaml --cycles 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Cycles, "cycles", 0, "host cycles to run (default: scenario value)")

	return cmd
}

func runSimulate(opts *SimulateOptions, scenarioPath string, cmd *cobra.Command) error {
	scenario, err := LoadScenario(scenarioPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	cycles := scenario.Cycles
	if opts.Cycles > 0 {
		cycles = opts.Cycles
	}

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	hst := simhost.New(simhost.WithConsole(stdout))
	if err := hst.Load(scenarioPlugin(scenario, opts, stdout, stderr)); err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario plugin", err)
	}
	defer func() {
		if err := hst.Unload(); err != nil {
			slog.Error("failed to unload plugin", "error", err)
		}
	}()

	for _, name := range scenario.Invoke {
		if _, ok := hst.CommandID(name); !ok {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to invoke %q", name), simhost.ErrUnknownCommand)
		}
		if err := hst.Invoke(name); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to invoke %q", name), err)
		}
	}

	slog.Debug("running host", "scenario", scenario.Name, "cycles", cycles)
	hst.RunCycles(cycles)

	if errs := hst.Errors(); len(errs) > 0 {
		return WrapExitError(ExitFailure,
			fmt.Sprintf("scenario %s: %d plugin error(s)", scenario.Name, len(errs)),
			errors.Join(errs...))
	}
	return nil
}

// scenarioPlugin is the plugin-load callback: it sets up the harness and
// turns the scenario's steps into test steps.
func scenarioPlugin(s *Scenario, opts *SimulateOptions, stdout, stderr io.Writer) host.PluginEntry {
	return func(ctx host.PluginContext) error {
		setupOpts := []harness.Option{harness.WithOutput(stdout, stderr)}
		if opts.Exit != nil {
			setupOpts = append(setupOpts, harness.WithExitFunc(opts.Exit))
		}
		if opts.Env != nil {
			setupOpts = append(setupOpts, harness.WithEnv(opts.Env))
		}

		h, err := harness.Setup(ctx, s.Action, setupOpts...)
		if err != nil {
			return err
		}

		for _, a := range s.Actions {
			desc := a.Description
			if desc == "" {
				desc = a.Name
			}
			if _, err := h.RegisterAction(a.Name, desc); err != nil {
				return err
			}
		}

		for _, step := range s.Steps {
			h.PushStep(harness.NewStep(step.Name, stepOperation(step)))
		}
		return nil
	}
}

// stepOperation maps a scenario step kind to a test operation.
func stepOperation(step ScenarioStep) harness.StepFunc {
	switch step.Kind {
	case StepFail:
		return func(*harness.Harness) error {
			return errors.New(step.Message)
		}
	case StepCrash:
		return func(*harness.Harness) error {
			simhost.Crash(step.Message)
			return nil
		}
	case StepConsole:
		return func(h *harness.Harness) error {
			h.Session().ShowConsoleMsg(step.Message + "\n")
			return nil
		}
	default:
		return func(*harness.Harness) error {
			return nil
		}
	}
}
