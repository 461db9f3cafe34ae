package harness

// Exit codes used in automated mode.
const (
	ExitCodeSuccess = 0
	// ExitCodeFailure is distinguishable from generic crash and signal exits.
	ExitCodeFailure = 172
)

// EnvIntegrationTest selects automated mode when present, whatever its value.
const EnvIntegrationTest = "RUN_INHOST_INTEGRATION_TEST"

// Console markers written by the runner and the reporter.
const (
	StartBanner   = "# Testing "
	StepMarker    = "Testing step: "
	SuccessBanner = "From host: integration test executed successfully"
	FailureBanner = "From host: integration test failed: "
)

// Mode selects how a run outcome is reported.
type Mode int

const (
	// ModeInteractive is the default: a human is operating the host.
	ModeInteractive Mode = iota
	// ModeAutomated always ends the process with a status-bearing exit code.
	ModeAutomated
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeAutomated:
		return "automated"
	default:
		return "unknown"
	}
}

// ModeFromEnv derives the mode from the presence of EnvIntegrationTest.
func ModeFromEnv(lookup func(string) (string, bool)) Mode {
	if _, ok := lookup(EnvIntegrationTest); ok {
		return ModeAutomated
	}
	return ModeInteractive
}

// Outcome is the result of one run: success when Err is nil.
// Err is a *StepFailure or a *ContainedCrash.
type Outcome struct {
	Err error
}

// Success is the passing outcome.
func Success() Outcome {
	return Outcome{}
}

// Failure wraps a run-level failure.
func Failure(err error) Outcome {
	return Outcome{Err: err}
}

// Passed reports whether every step succeeded.
func (o Outcome) Passed() bool {
	return o.Err == nil
}

// Reason is the failure text, empty on success.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
