package harness

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Run executes every registered step in order and returns one Outcome.
//
// The first step returning an error stops the run; later steps are neither
// invoked nor announced. A panic raised synchronously by a step, including
// a host fault surfaced on this thread, is caught at this boundary and
// becomes a *ContainedCrash.
//
// Coverage gap: faults that kill the process outright (memory corruption
// in foreign code, fatal runtime errors such as concurrent map writes, or
// panics on goroutines the step started) never reach this boundary.
func (h *Harness) Run() Outcome {
	session := h.ids.Generate()
	log := h.logger.With("session", session)

	fmt.Fprintf(h.stdout, "%s%s\n\n", StartBanner, h.action)
	log.Info("test session started", "steps", h.steps.len(), "mode", h.mode)

	outcome := h.runSteps(h.steps.snapshot(), log)

	if outcome.Passed() {
		log.Info("test session passed")
	} else {
		log.Warn("test session failed", "reason", outcome.Reason())
	}
	return outcome
}

// runSteps is the crash-containment boundary.
func (h *Harness) runSteps(steps []TestStep, log *slog.Logger) (outcome Outcome) {
	current := ""
	defer func() {
		if r := recover(); r != nil {
			crash := &ContainedCrash{Step: current, Value: r, Stack: debug.Stack()}
			log.Error("step crashed", "step", current, "panic", crash.Detail(), "stack", string(crash.Stack))
			outcome = Failure(crash)
		}
	}()

	for i, step := range steps {
		current = step.name
		fmt.Fprintf(h.stdout, "%s%s\n", StepMarker, step.name)
		log.Debug("step started", "step", step.name, "index", i)

		if err := step.operation(h); err != nil {
			return Failure(&StepFailure{Step: step.name, Err: err})
		}
		log.Debug("step passed", "step", step.name, "index", i)
	}
	return Success()
}
