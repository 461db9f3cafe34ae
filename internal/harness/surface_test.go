package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/inhost/internal/testutil"
)

func TestTriggerSurface_FiresExactlyOnce(t *testing.T) {
	for _, polls := range []int{1, 2, 10} {
		rec := testutil.NewRecorder()
		f := newFixture(t, automated(), func(h *Harness) {
			h.PushStep(recordingStep(rec, "only", nil))
		})

		f.host.RunCycles(polls)

		assert.Equal(t, 1, rec.Count("only"), "polls=%d", polls)
		assert.Equal(t, []int{ExitCodeSuccess}, f.exits.Codes(), "polls=%d", polls)

		// Tear down between iterations; the fixture cleanup tolerates it.
		_ = f.host.Unload()
	}
}

func TestTriggerSurface_FailureExits172(t *testing.T) {
	f := newFixture(t, automated(), func(h *Harness) {
		h.PushStep(NewStep("broken", func(*Harness) error { return errors.New("X") }))
	})

	f.host.RunCycles(4)

	assert.Equal(t, []int{ExitCodeFailure}, f.exits.Codes())
	assert.Equal(t, FailureBanner+"X\n", f.stderr.String())
}

func TestTriggerSurface_StateMachine(t *testing.T) {
	s := &triggerSurface{}
	assert.Equal(t, surfaceArmed, s.state)

	// No harness is set up here: firing still moves to Fired and does nothing else.
	s.Run()
	assert.Equal(t, surfaceFired, s.state)
	s.Run()
	assert.Equal(t, surfaceFired, s.state)
}

func TestTriggerSurface_AbsentInInteractiveMode(t *testing.T) {
	rec := testutil.NewRecorder()
	f := newFixture(t, nil, func(h *Harness) {
		h.PushStep(recordingStep(rec, "only", nil))
	})

	f.host.RunCycles(5)

	assert.Empty(t, rec.Calls(), "interactive runs wait for the action")
}
