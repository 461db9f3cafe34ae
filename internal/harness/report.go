package harness

import "fmt"

// Report maps an outcome to process-visible behavior.
//
//	automated, passed: success banner, exit 0
//	automated, failed: reason on stderr, exit 172
//	interactive, passed: success banner, keep running
//	interactive, failed: panic with *InteractiveFailure for the host to show
func (h *Harness) Report(outcome Outcome) {
	if outcome.Passed() {
		fmt.Fprintln(h.stdout, SuccessBanner)
		if h.mode == ModeAutomated {
			h.exit(ExitCodeSuccess)
		}
		return
	}

	reason := outcome.Reason()
	if h.mode == ModeAutomated {
		fmt.Fprintf(h.stderr, "%s%s\n", FailureBanner, reason)
		h.exit(ExitCodeFailure)
		return
	}
	panic(&InteractiveFailure{Reason: reason})
}
