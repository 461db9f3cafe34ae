package harness

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inhost/internal/simhost"
	"github.com/roach88/inhost/internal/testutil"
)

func TestRun_AllStepsPass(t *testing.T) {
	rec := testutil.NewRecorder()
	f := newFixture(t, nil, func(h *Harness) {
		for _, name := range []string{"a", "b", "c", "d"} {
			h.PushStep(recordingStep(rec, name, nil))
		}
	})

	outcome := f.h.Run()

	assert.True(t, outcome.Passed())
	assert.Empty(t, outcome.Reason())
	assert.Equal(t, []string{"a", "b", "c", "d"}, rec.Calls())
	assert.Equal(t,
		"# Testing "+testAction+"\n\n"+
			"Testing step: a\n"+
			"Testing step: b\n"+
			"Testing step: c\n"+
			"Testing step: d\n",
		f.stdout.String())
}

func TestRun_NoStepsPasses(t *testing.T) {
	f := newFixture(t, nil, nil)
	assert.True(t, f.h.Run().Passed())
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	const n = 5
	for k := 1; k <= n; k++ {
		t.Run(fmt.Sprintf("fail_at_%d", k), func(t *testing.T) {
			rec := testutil.NewRecorder()
			reason := fmt.Sprintf("step %d broke", k)

			f := newFixture(t, nil, func(h *Harness) {
				for i := 1; i <= n; i++ {
					var err error
					if i == k {
						err = errors.New(reason)
					}
					h.PushStep(recordingStep(rec, fmt.Sprintf("s%d", i), err))
				}
			})

			outcome := f.h.Run()

			require.False(t, outcome.Passed())
			assert.Equal(t, reason, outcome.Reason())
			assert.True(t, IsStepFailure(outcome.Err))

			var sf *StepFailure
			require.ErrorAs(t, outcome.Err, &sf)
			assert.Equal(t, fmt.Sprintf("s%d", k), sf.Step)

			want := make([]string, 0, k)
			for i := 1; i <= k; i++ {
				want = append(want, fmt.Sprintf("s%d", i))
			}
			assert.Equal(t, want, rec.Calls(), "steps after the failure must not run")
			assert.NotContains(t, f.stdout.String(), fmt.Sprintf("Testing step: s%d\n", k+1))
		})
	}
}

func TestRun_StepFailureKeepsCause(t *testing.T) {
	sentinel := errors.New("track count mismatch")
	f := newFixture(t, nil, func(h *Harness) {
		h.PushStep(NewStep("count", func(*Harness) error {
			return fmt.Errorf("checking tracks: %w", sentinel)
		}))
	})

	outcome := f.h.Run()
	assert.ErrorIs(t, outcome.Err, sentinel)
	assert.Equal(t, "checking tracks: track count mismatch", outcome.Reason())
}

func TestRun_ContainsHostFault(t *testing.T) {
	rec := testutil.NewRecorder()
	f := newFixture(t, nil, func(h *Harness) {
		h.PushStep(recordingStep(rec, "before", nil))
		h.PushStep(NewStep("faulting", func(*Harness) error {
			rec.Hit("faulting")
			simhost.Crash("access violation")
			return nil
		}))
		h.PushStep(recordingStep(rec, "after", nil))
	})

	outcome := f.h.Run()

	require.False(t, outcome.Passed())
	assert.Equal(t, CrashReason, outcome.Reason())
	assert.True(t, IsContainedCrash(outcome.Err))
	assert.Equal(t, []string{"before", "faulting"}, rec.Calls())

	var cc *ContainedCrash
	require.ErrorAs(t, outcome.Err, &cc)
	assert.Equal(t, "faulting", cc.Step)
	assert.NotEmpty(t, cc.Stack)

	var fault *simhost.Fault
	require.ErrorAs(t, outcome.Err, &fault)
	assert.Equal(t, "access violation", fault.Message)
}

func TestRun_ContainsRuntimePanics(t *testing.T) {
	tests := []struct {
		name string
		op   StepFunc
	}{
		{"index out of range", func(*Harness) error {
			var s []int
			_ = s[3]
			return nil
		}},
		{"nil map write", func(*Harness) error {
			var m map[string]int
			m["x"] = 1
			return nil
		}},
		{"panic string", func(*Harness) error {
			panic("boom")
		}},
		{"panic nil", func(*Harness) error {
			panic(nil)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, func(h *Harness) {
				h.PushStep(NewStep(tt.name, tt.op))
			})
			outcome := f.h.Run()
			assert.Equal(t, CrashReason, outcome.Reason())
			assert.True(t, IsContainedCrash(outcome.Err))
		})
	}
}

func TestRun_HarnessUsableAfterCrash(t *testing.T) {
	crash := true
	f := newFixture(t, automated(), func(h *Harness) {
		h.PushStep(NewStep("flaky", func(*Harness) error {
			if crash {
				simhost.Crash("first run")
			}
			return nil
		}))
	})

	first := f.h.Run()
	require.True(t, IsContainedCrash(first.Err))
	f.h.Report(first)

	crash = false
	second := f.h.Run()
	assert.True(t, second.Passed())
	f.h.Report(second)

	assert.Equal(t, []int{ExitCodeFailure, ExitCodeSuccess}, f.exits.Codes())
}

func TestRun_StepsSeeHarness(t *testing.T) {
	var seen *Harness
	f := newFixture(t, nil, func(h *Harness) {
		h.PushStep(NewStep("hello", func(h *Harness) error {
			seen = h
			h.Session().ShowConsoleMsg("Hello world!\n")
			return nil
		}))
	})

	require.True(t, f.h.Run().Passed())
	assert.Same(t, f.h, seen)
	assert.Equal(t, "Hello world!\n", f.console.String())
}

func TestRun_StepPushedDuringRunWaitsForNextRun(t *testing.T) {
	rec := testutil.NewRecorder()
	f := newFixture(t, nil, func(h *Harness) {
		h.PushStep(NewStep("grow", func(h *Harness) error {
			rec.Hit("grow")
			h.PushStep(recordingStep(rec, "late", nil))
			return nil
		}))
	})

	require.True(t, f.h.Run().Passed())
	assert.Equal(t, []string{"grow"}, rec.Calls())
}

func TestNewStep_NilOperationFails(t *testing.T) {
	f := newFixture(t, nil, func(h *Harness) {
		h.PushStep(NewStep("empty", nil))
	})
	outcome := f.h.Run()
	assert.True(t, IsStepFailure(outcome.Err))
	assert.Equal(t, "step empty has no operation", outcome.Reason())
}

func TestNewStep_NormalizesName(t *testing.T) {
	// "e" + combining acute accent composes to U+00E9.
	step := NewStep("  cafe\u0301  ", nil)
	assert.Equal(t, "caf\u00e9", step.Name())
	assert.Equal(t, "caf\u00e9", step.String())
}
