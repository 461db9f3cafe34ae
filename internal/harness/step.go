package harness

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// StepFunc is a single-shot test operation. It runs on the host's thread
// and must return before the next step can start.
type StepFunc func(h *Harness) error

// TestStep pairs a display name with an operation. It is immutable once built.
type TestStep struct {
	name      string
	operation StepFunc
}

// NewStep builds a named step.
//
// The name is NFC-normalized so the progress marker is byte-stable no matter
// how the author's editor composed it. A nil operation yields a step that
// fails with a descriptive reason instead of panicking mid-run.
func NewStep(name string, op StepFunc) TestStep {
	name = norm.NFC.String(strings.TrimSpace(name))
	if op == nil {
		op = func(*Harness) error {
			return errors.New("step " + name + " has no operation")
		}
	}
	return TestStep{name: name, operation: op}
}

// Name returns the display name.
func (s TestStep) Name() string {
	return s.name
}

// String implements fmt.Stringer.
func (s TestStep) String() string {
	return s.name
}

// stepRegistry holds steps in registration order.
// Order is semantic: the runner is sequential and fail-fast.
type stepRegistry struct {
	steps []TestStep
}

func (r *stepRegistry) push(step TestStep) {
	r.steps = append(r.steps, step)
}

func (r *stepRegistry) len() int {
	return len(r.steps)
}

// names returns a copy of the step names in order.
func (r *stepRegistry) names() []string {
	out := make([]string, len(r.steps))
	for i, s := range r.steps {
		out[i] = s.name
	}
	return out
}

// snapshot returns the steps to execute. Steps pushed while a run is in
// progress are picked up by the next run, not the current one.
func (r *stepRegistry) snapshot() []TestStep {
	out := make([]TestStep, len(r.steps))
	copy(out, r.steps)
	return out
}
