package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inhost/internal/host"
	"github.com/roach88/inhost/internal/simhost"
	"github.com/roach88/inhost/internal/testutil"
)

func TestCommandHook_InvokedActionRunsTests(t *testing.T) {
	rec := testutil.NewRecorder()
	f := newFixture(t, nil, func(h *Harness) {
		h.PushStep(recordingStep(rec, "only", nil))
	})

	require.NoError(t, f.host.Invoke(testAction))
	f.host.RunCycle()

	assert.Equal(t, []string{"only"}, rec.Calls())
	assert.Contains(t, f.stdout.String(), SuccessBanner)
	assert.Empty(t, f.host.Errors())
}

func TestCommandHook_OtherCommandsPassThrough(t *testing.T) {
	rec := testutil.NewRecorder()
	seen := testutil.NewRecorder()
	f := newFixture(t, nil, func(h *Harness) {
		h.PushStep(recordingStep(rec, "only", nil))

		s := h.Session()
		other, err := s.AddCommandID("other_plugin_action")
		require.NoError(t, err)
		require.NoError(t, s.AddActionBinding(host.ActionBinding{Command: other, Description: "other"}))
		require.NoError(t, s.AddHookCommand(func(id host.CommandID, _ int) bool {
			seen.Hit(id.String())
			return id == other
		}))
	})

	require.NoError(t, f.host.Invoke("other_plugin_action"))
	f.host.RunCycle()
	assert.Empty(t, rec.Calls(), "foreign command must not trigger a run")
	assert.Equal(t, 1, seen.Count((simhost.FirstCommandID + 1).String()))

	require.NoError(t, f.host.Invoke(testAction))
	f.host.RunCycle()
	assert.Equal(t, []string{"only"}, rec.Calls())
	assert.Equal(t, 0, seen.Count(simhost.FirstCommandID.String()), "handled test action is not offered to later hooks")
}

func TestRegisterAction_AllActionsTriggerRun(t *testing.T) {
	rec := testutil.NewRecorder()
	var extra host.CommandID
	f := newFixture(t, nil, func(h *Harness) {
		h.PushStep(recordingStep(rec, "only", nil))
		id, err := h.RegisterAction("inhost_rerun", "Re-run integration tests")
		require.NoError(t, err)
		extra = id
	})

	assert.Equal(t, 1, f.host.HookCount(), "one hook serves every action")
	require.Len(t, f.host.Actions(), 2)
	assert.Equal(t, extra, f.host.Actions()[1].Command)

	require.NoError(t, f.host.Invoke(testAction))
	require.NoError(t, f.host.Invoke("inhost_rerun"))
	f.host.RunCycle()

	assert.Equal(t, 2, rec.Count("only"))
}

func TestCommandHook_InteractiveFailureSurfacesInHost(t *testing.T) {
	rec := testutil.NewRecorder()
	f := newFixture(t, nil, func(h *Harness) {
		h.PushStep(recordingStep(rec, "broken", errors.New("X")))
	})

	require.NoError(t, f.host.Invoke(testAction))
	f.host.RunCycle()

	errs := f.host.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), FailureBanner+"X")
	assert.Contains(t, f.console.String(), "plugin error: "+FailureBanner+"X")
	assert.Empty(t, f.exits.Codes(), "interactive mode never exits")

	// The host keeps running and the action can be invoked again.
	require.NoError(t, f.host.Invoke(testAction))
	f.host.RunCycle()
	assert.Equal(t, 2, rec.Count("broken"))
	assert.Len(t, f.host.Errors(), 2)
}

func TestCommandHook_IgnoresCommandsAfterTeardown(t *testing.T) {
	rec := testutil.NewRecorder()
	f := newFixture(t, nil, func(h *Harness) {
		h.PushStep(recordingStep(rec, "only", nil))
	})

	require.NoError(t, f.host.Unload())
	require.NoError(t, f.host.Invoke(testAction))
	f.host.RunCycle()

	assert.Empty(t, rec.Calls())
	assert.Empty(t, f.host.Errors())

	// Reload so the fixture cleanup has something to unload.
	require.NoError(t, f.host.Load(func(ctx host.PluginContext) error {
		_, err := Setup(ctx, testAction, WithEnv(testutil.Env(nil)))
		return err
	}))
}
