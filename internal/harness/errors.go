package harness

import (
	"errors"
	"fmt"
)

// CrashReason is the run-level reason reported for a contained crash.
const CrashReason = "host crashed"

// ErrNotInitialized is wrapped by SetupMisuseError.
var ErrNotInitialized = errors.New("harness not initialized: call Setup from the plugin-load callback first")

// ErrorCode categorizes harness errors.
type ErrorCode string

const (
	// ErrCodeStepFailed indicates a step operation reported a failure.
	ErrCodeStepFailed ErrorCode = "STEP_FAILED"

	// ErrCodeCrashContained indicates a step panicked and the runner caught it.
	ErrCodeCrashContained ErrorCode = "CRASH_CONTAINED"

	// ErrCodeSetupMisuse indicates the singleton was accessed before Setup.
	ErrCodeSetupMisuse ErrorCode = "SETUP_MISUSE"
)

// StepFailure is produced when a step operation returns an error.
// Its message is the step's own reason, unchanged.
type StepFailure struct {
	Step string
	Err  error
}

func (e *StepFailure) Error() string {
	return e.Err.Error()
}

func (e *StepFailure) Unwrap() error {
	return e.Err
}

// Code implements the coded error contract.
func (e *StepFailure) Code() ErrorCode {
	return ErrCodeStepFailed
}

// ContainedCrash is produced when a step panics.
//
// Value is whatever was recovered. Stack is captured at the containment
// boundary for the log; it is not part of the reported reason.
type ContainedCrash struct {
	Step  string
	Value any
	Stack []byte
}

func (e *ContainedCrash) Error() string {
	return CrashReason
}

// Unwrap exposes the recovered value when it was an error
// (for example a runtime.Error or a host fault).
func (e *ContainedCrash) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Code implements the coded error contract.
func (e *ContainedCrash) Code() ErrorCode {
	return ErrCodeCrashContained
}

// Detail describes the recovered value for diagnostics.
func (e *ContainedCrash) Detail() string {
	if e.Step == "" {
		return fmt.Sprintf("%v", e.Value)
	}
	return fmt.Sprintf("step %q: %v", e.Step, e.Value)
}

// SetupMisuseError is the panic value raised by Get before Setup.
// It is a programmer error and never becomes an Outcome.
type SetupMisuseError struct {
	Accessor string
}

func (e *SetupMisuseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCodeSetupMisuse, e.Accessor, ErrNotInitialized)
}

func (e *SetupMisuseError) Unwrap() error {
	return ErrNotInitialized
}

// Code implements the coded error contract.
func (e *SetupMisuseError) Code() ErrorCode {
	return ErrCodeSetupMisuse
}

// InteractiveFailure is the panic value raised by the reporter when a run
// fails in interactive mode. Hosts surface plugin panics in their own UI.
type InteractiveFailure struct {
	Reason string
}

func (e *InteractiveFailure) Error() string {
	return FailureBanner + e.Reason
}

// IsStepFailure returns true if err is or wraps a StepFailure.
func IsStepFailure(err error) bool {
	var sf *StepFailure
	return errors.As(err, &sf)
}

// IsContainedCrash returns true if err is or wraps a ContainedCrash.
func IsContainedCrash(err error) bool {
	var cc *ContainedCrash
	return errors.As(err, &cc)
}

// IsSetupMisuse returns true if err is or wraps a SetupMisuseError.
func IsSetupMisuse(err error) bool {
	var sm *SetupMisuseError
	return errors.As(err, &sm)
}
