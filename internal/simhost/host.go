package simhost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/roach88/inhost/internal/host"
)

// FirstCommandID is the id handed out to the first registered command.
const FirstCommandID host.CommandID = 40000

// DefaultCycleInterval approximates a host UI refresh rate (~30 Hz).
const DefaultCycleInterval = 33 * time.Millisecond

var (
	ErrEmptyCommandName = errors.New("command name is empty")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrNilCallback      = errors.New("callback is nil")
	ErrNotLoaded        = errors.New("no plugin loaded")
	ErrAlreadyLoaded    = errors.New("plugin already loaded")
	ErrStopped          = errors.New("host stopped")
)

// Host is a simulated host application.
//
// Thread-safety model:
//   - Invoke(), Cycle(), Errors(): safe from any goroutine
//   - Load(), Unload(), RunCycle(), Run(): must be called from the one
//     goroutine acting as the host thread
//   - Session methods: host thread only, i.e. from plugin callbacks
type Host struct {
	logger   *slog.Logger
	console  io.Writer
	interval time.Duration

	clock *Clock
	queue *commandQueue

	loaded   bool
	nextID   host.CommandID
	commands map[string]host.CommandID
	bindings map[host.CommandID]host.ActionBinding
	hooks    []host.HookCommand
	surfaces []host.ControlSurface
	teardown []func()

	errs *errorLog
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host's logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithConsole sets where ShowConsoleMsg and plugin errors are written.
// Default: os.Stdout.
func WithConsole(w io.Writer) Option {
	return func(h *Host) {
		h.console = w
	}
}

// WithCycleInterval sets the period of Run's processing loop.
func WithCycleInterval(d time.Duration) Option {
	return func(h *Host) {
		h.interval = d
	}
}

// New creates a host with no plugin loaded.
func New(opts ...Option) *Host {
	h := &Host{
		logger:   slog.Default(),
		console:  os.Stdout,
		interval: DefaultCycleInterval,
		clock:    &Clock{},
		queue:    newCommandQueue(),
		nextID:   FirstCommandID,
		commands: make(map[string]host.CommandID),
		bindings: make(map[host.CommandID]host.ActionBinding),
		errs:     &errorLog{},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "simhost")
	return h
}

// Load calls the plugin-load callback. A panic in entry is contained and
// returned as an error, as a host would refuse the plugin.
func (h *Host) Load(entry host.PluginEntry) (err error) {
	if h.loaded {
		return ErrAlreadyLoaded
	}
	if entry == nil {
		return ErrNilCallback
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin load panicked: %v", r)
		}
		if err != nil {
			h.runTeardown()
		}
	}()

	if err := entry(&pluginContext{host: h}); err != nil {
		return fmt.Errorf("plugin load failed: %w", err)
	}
	h.loaded = true
	h.logger.Info("plugin loaded", "commands", len(h.commands), "surfaces", len(h.surfaces))
	return nil
}

// Unload runs teardown hooks in reverse registration order and stops
// polling surfaces. Hook commands stay installed, as in real hosts.
func (h *Host) Unload() error {
	if !h.loaded {
		return ErrNotLoaded
	}
	h.runTeardown()
	h.loaded = false
	h.logger.Info("plugin unloaded")
	return nil
}

func (h *Host) runTeardown() {
	for i := len(h.teardown) - 1; i >= 0; i-- {
		h.guard("teardown", h.teardown[i])
	}
	h.teardown = nil
	h.surfaces = nil
}

// Invoke queues a command by name for the next cycle.
func (h *Host) Invoke(name string) error {
	if name == "" {
		return ErrEmptyCommandName
	}
	if !h.queue.enqueue(name) {
		return ErrStopped
	}
	return nil
}

// RunCycle runs one processing cycle on the calling goroutine.
func (h *Host) RunCycle() {
	cycle := h.clock.Next()

	for _, name := range h.queue.drain() {
		id, ok := h.commands[name]
		if !ok {
			h.logger.Warn("invoked unknown command", "name", name, "cycle", cycle)
			continue
		}
		if !h.dispatch(id) {
			h.logger.Debug("command not handled", "name", name, "command", id, "cycle", cycle)
		}
	}

	for _, s := range h.surfaces {
		h.guard("control surface", s.Run)
	}
}

// RunCycles runs n cycles back to back.
func (h *Host) RunCycles(n int) {
	for i := 0; i < n; i++ {
		h.RunCycle()
	}
}

// Run drives cycles on a ticker until ctx is cancelled. Pending commands
// are dropped when it returns.
func (h *Host) Run(ctx context.Context) error {
	h.logger.Info("host loop starting", "interval", h.interval)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.queue.close()
			h.logger.Info("host loop stopping", "cycles", h.clock.Current())
			return ctx.Err()
		case <-ticker.C:
			h.RunCycle()
		}
	}
}

// dispatch offers id to every hook command until one handles it.
func (h *Host) dispatch(id host.CommandID) bool {
	for _, hook := range h.hooks {
		handled := false
		ok := h.guard("hook command", func() {
			handled = hook(id, 0)
		})
		// A hook that panicked owned the command; stop offering it.
		if handled || !ok {
			return true
		}
	}
	return false
}

// guard runs a plugin callback and contains its panics.
// It reports false if fn panicked.
func (h *Host) guard(what string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err := fmt.Errorf("%s: %v", what, r)
			h.errs.add(err)
			fmt.Fprintf(h.console, "plugin error: %v\n", r)
			h.logger.Error("plugin callback panicked", "callback", what, "panic", r)
		}
	}()
	fn()
	return true
}

// Cycle returns the number of cycles run so far.
func (h *Host) Cycle() uint64 {
	return h.clock.Current()
}

// Errors returns the plugin errors shown so far, oldest first.
func (h *Host) Errors() []error {
	return h.errs.list()
}

// CommandID looks up a registered command. Host thread only.
func (h *Host) CommandID(name string) (host.CommandID, bool) {
	id, ok := h.commands[name]
	return id, ok
}

// Actions returns the registered action bindings ordered by command id.
// Host thread only.
func (h *Host) Actions() []host.ActionBinding {
	out := make([]host.ActionBinding, 0, len(h.bindings))
	for _, b := range h.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Command < out[j].Command
	})
	return out
}

// HookCount returns the number of installed hook commands. Host thread only.
func (h *Host) HookCount() int {
	return len(h.hooks)
}

// SurfaceCount returns the number of polled control surfaces. Host thread only.
func (h *Host) SurfaceCount() int {
	return len(h.surfaces)
}
