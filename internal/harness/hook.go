package harness

import (
	"fmt"

	"github.com/roach88/inhost/internal/host"
)

// commandHook is the set of command ids that trigger a run.
// It is created on the first RegisterAction and installed with the host
// exactly once; it is never uninstalled.
type commandHook struct {
	actions map[host.CommandID]string
}

func newCommandHook() *commandHook {
	return &commandHook{actions: make(map[host.CommandID]string)}
}

// RegisterAction allocates a host command for name, lists it in the host's
// actions without a key binding, and routes its invocations to Test.
// Every registered action triggers the same run.
func (h *Harness) RegisterAction(name, description string) (host.CommandID, error) {
	id, err := h.session.AddCommandID(name)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate command id: %w", err)
	}

	binding := host.ActionBinding{
		Command:     id,
		Description: description,
	}
	if err := h.session.AddActionBinding(binding); err != nil {
		return 0, fmt.Errorf("failed to register action binding: %w", err)
	}

	if err := h.ensureHook(); err != nil {
		return 0, err
	}

	h.hook.actions[id] = name
	h.logger.Debug("test action registered", "name", name, "command", id)
	return id, nil
}

// ensureHook installs the process-wide hook with the host unless this
// session already has it. The first RegisterAction runs inside Setup, which
// holds global.mu.
func (h *Harness) ensureHook() error {
	if h.hook != nil {
		return nil
	}
	if global.hooked != h.session {
		if err := h.session.AddHookCommand(handleCommand); err != nil {
			return fmt.Errorf("failed to register command hook: %w", err)
		}
		global.hooked = h.session
	}
	h.hook = newCommandHook()
	return nil
}

// handles reports whether id belongs to a registered test action.
func (c *commandHook) handles(id host.CommandID) bool {
	_, ok := c.actions[id]
	return ok
}

// handleCommand is the host hook. It holds no reference to a harness and
// fetches the current one at call time, so a torn-down harness simply stops
// claiming commands.
func handleCommand(id host.CommandID, _ int) bool {
	h, ok := Lookup()
	if !ok || h.hook == nil || !h.hook.handles(id) {
		return false
	}
	h.logger.Debug("test action invoked", "name", h.hook.actions[id], "command", id)
	h.Test()
	return true
}
