package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/roach88/inhost/internal/harness"
)

// Verdict classifies a host run.
type Verdict string

const (
	VerdictPassed  Verdict = "passed"
	VerdictFailed  Verdict = "failed"
	VerdictCrashed Verdict = "crashed"
)

// Result is what the driver observed.
type Result struct {
	Verdict  Verdict       `json:"verdict"`
	ExitCode int           `json:"exit_code"`
	Reason   string        `json:"reason,omitempty"`
	Steps    []string      `json:"steps,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Stdout   string        `json:"-"`
	Stderr   string        `json:"-"`
}

// Passed reports whether every step passed.
func (r *Result) Passed() bool {
	return r.Verdict == VerdictPassed
}

// Run launches the host described by cfg with the automated-mode flag set
// and waits for it to exit.
//
// An error is returned only when the host cannot be started; every exit,
// including crashes, is a Result. Cancelling ctx kills the host, which then
// classifies as crashed.
func Run(ctx context.Context, cfg *Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, cfg.Host, cfg.Args...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(os.Environ(), cfg.Env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Info("starting host", "host", cfg.Host, "args", cfg.Args, "dir", cfg.Dir)
	start := time.Now()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start host: %w", err)
	}
	waitErr := cmd.Wait()

	result := &Result{
		Duration: time.Since(start),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Steps:    parseSteps(stdout.String()),
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		result.ExitCode = 0
	case errors.As(waitErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("failed waiting for host: %w", waitErr)
	}

	classify(result)
	slog.Info("host exited",
		"verdict", result.Verdict,
		"exit_code", result.ExitCode,
		"duration", result.Duration,
	)
	return result, nil
}

// classify sets Verdict and Reason from ExitCode and Stderr.
// ExitCode is -1 when the host was killed by a signal.
func classify(r *Result) {
	switch r.ExitCode {
	case harness.ExitCodeSuccess:
		r.Verdict = VerdictPassed
	case harness.ExitCodeFailure:
		r.Verdict = VerdictFailed
		r.Reason = parseFailureReason(r.Stderr)
	default:
		r.Verdict = VerdictCrashed
		if r.ExitCode < 0 {
			r.Reason = "host terminated by signal"
		} else {
			r.Reason = fmt.Sprintf("host exited with code %d", r.ExitCode)
		}
	}
}

// buildEnv returns base plus extra plus the automated-mode flag, sorted so
// runs are reproducible. Extra overrides base.
func buildEnv(base []string, extra map[string]string) []string {
	merged := make(map[string]string, len(base)+len(extra)+1)
	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	merged[harness.EnvIntegrationTest] = "1"

	env := make([]string, 0, len(merged))
	for k, v := range merged {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// parseFailureReason returns the text after the last failure banner.
func parseFailureReason(stderr string) string {
	reason := ""
	for line := range outputLines(stderr) {
		if i := strings.Index(line, harness.FailureBanner); i >= 0 {
			reason = line[i+len(harness.FailureBanner):]
		}
	}
	if reason == "" {
		return "failure reason not reported"
	}
	return reason
}

// parseSteps lists the steps the host announced, in order.
func parseSteps(stdout string) []string {
	var steps []string
	for line := range outputLines(stdout) {
		if name, ok := strings.CutPrefix(line, harness.StepMarker); ok {
			steps = append(steps, name)
		}
	}
	return steps
}

// outputLines yields the lines of captured host output without their
// terminators. Lines have no length limit: hosts may log huge payloads
// before the banner.
func outputLines(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range strings.Lines(s) {
			if !yield(strings.TrimRight(line, "\r\n")) {
				return
			}
		}
	}
}
