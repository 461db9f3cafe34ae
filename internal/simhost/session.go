package simhost

import (
	"fmt"
	"io"
	"sync"

	"github.com/roach88/inhost/internal/host"
)

// pluginContext is what Load hands to the plugin entry.
type pluginContext struct {
	host *Host
}

// Session returns the host itself; every call yields the same handle.
func (c *pluginContext) Session() (host.Session, error) {
	return c.host, nil
}

// RegisterTeardownHook implements host.PluginContext.
func (c *pluginContext) RegisterTeardownHook(fn func()) {
	if fn == nil {
		return
	}
	c.host.teardown = append(c.host.teardown, fn)
}

// AddCommandID implements host.Session. Registering a name twice returns
// the id allocated the first time.
func (h *Host) AddCommandID(name string) (host.CommandID, error) {
	if name == "" {
		return 0, ErrEmptyCommandName
	}
	if id, ok := h.commands[name]; ok {
		return id, nil
	}
	id := h.nextID
	h.nextID++
	h.commands[name] = id
	return id, nil
}

// AddActionBinding implements host.Session.
func (h *Host) AddActionBinding(binding host.ActionBinding) error {
	known := false
	for _, id := range h.commands {
		if id == binding.Command {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, binding.Command)
	}
	h.bindings[binding.Command] = binding
	return nil
}

// AddHookCommand implements host.Session.
func (h *Host) AddHookCommand(hook host.HookCommand) error {
	if hook == nil {
		return ErrNilCallback
	}
	h.hooks = append(h.hooks, hook)
	return nil
}

// AddControlSurface implements host.Session.
func (h *Host) AddControlSurface(surface host.ControlSurface) error {
	if surface == nil {
		return ErrNilCallback
	}
	h.surfaces = append(h.surfaces, surface)
	return nil
}

// ShowConsoleMsg implements host.Session.
func (h *Host) ShowConsoleMsg(msg string) {
	io.WriteString(h.console, msg)
}

// Fault is raised by Crash. It stands in for a fault in foreign host code
// that surfaces synchronously on the calling thread.
type Fault struct {
	Message string
}

func (f *Fault) Error() string {
	return "host fault: " + f.Message
}

// Crash raises a *Fault panic on the calling goroutine.
func Crash(msg string) {
	panic(&Fault{Message: msg})
}

// errorLog records plugin errors; readable from any goroutine.
type errorLog struct {
	mu   sync.Mutex
	errs []error
}

func (l *errorLog) add(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func (l *errorLog) list() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]error, len(l.errs))
	copy(out, l.errs)
	return out
}
