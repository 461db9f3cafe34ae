package harness

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/roach88/inhost/internal/host"
)

// Harness is the process-wide test context living inside the host.
//
// Thread-safety model:
//   - Setup, Get, Lookup: safe from any goroutine
//   - everything else: host thread only (hook, surface and step callbacks
//     all run there, so the mutable state needs no locking)
type Harness struct {
	ctx     host.PluginContext
	session host.Session
	action  string
	mode    Mode
	hook    *commandHook
	steps   stepRegistry

	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
	exit   func(int)
	ids    SessionIDGenerator
}

// Option configures a Harness at Setup. Options passed to a repeated Setup
// call are ignored along with the rest of that call.
type Option func(*options)

type options struct {
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
	exit   func(int)
	env    func(string) (string, bool)
	ids    SessionIDGenerator
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithOutput sets the streams console markers are written to.
// Default: os.Stdout and os.Stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithExitFunc replaces os.Exit for automated-mode termination.
func WithExitFunc(exit func(int)) Option {
	return func(o *options) {
		o.exit = exit
	}
}

// WithEnv replaces os.LookupEnv for mode detection.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(o *options) {
		o.env = lookup
	}
}

// WithSessionIDs sets the session id generator. Default: UUIDv7Generator.
func WithSessionIDs(gen SessionIDGenerator) Option {
	return func(o *options) {
		o.ids = gen
	}
}

// cell is the guarded one-time-initialization slot for the singleton.
// The mutex serializes construction; the atomic pointer lets accessors
// read without taking it.
type cell struct {
	mu       sync.Mutex
	instance atomic.Pointer[Harness]

	// hooked is the session handleCommand was installed on. Hooks are
	// never uninstalled, so a retried Setup or a plugin reload on the same
	// host reuses it. Guarded by mu.
	hooked host.Session
}

var global cell

// Setup builds the harness once per plugin load and returns it.
//
// It acquires the host capability handles from ctx, derives the mode from
// EnvIntegrationTest, registers actionName as the default test action and,
// in automated mode, installs the deferred trigger surface. Later calls
// return the existing instance without touching the host again. On error
// nothing is published, so a later call sets up from scratch.
//
// The teardown hook registered with the host clears the instance, so a
// reloaded plugin sets up afresh.
func Setup(ctx host.PluginContext, actionName string, opts ...Option) (*Harness, error) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if h := global.instance.Load(); h != nil {
		return h, nil
	}

	o := options{
		logger: slog.Default(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		exit:   os.Exit,
		env:    os.LookupEnv,
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	session, err := ctx.Session()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire host session: %w", err)
	}

	h := &Harness{
		ctx:     ctx,
		session: session,
		action:  actionName,
		mode:    ModeFromEnv(o.env),
		logger:  o.logger.With("component", "harness"),
		stdout:  o.stdout,
		stderr:  o.stderr,
		exit:    o.exit,
		ids:     o.ids,
	}

	if _, err := h.RegisterAction(actionName, actionName); err != nil {
		return nil, fmt.Errorf("failed to register test action %q: %w", actionName, err)
	}

	if h.mode == ModeAutomated {
		if err := session.AddControlSurface(&triggerSurface{}); err != nil {
			return nil, fmt.Errorf("failed to register test control surface: %w", err)
		}
	}

	// Published only once fully built: a failed Setup leaves the cell empty
	// and the next call retries.
	global.instance.Store(h)
	ctx.RegisterTeardownHook(h.teardown)

	h.logger.Info("harness ready", "action", actionName, "mode", h.mode)
	return h, nil
}

// Get returns the singleton.
//
// Panics with *SetupMisuseError if Setup has not completed. That is a
// usage error in the plugin, not a test failure.
func Get() *Harness {
	h := global.instance.Load()
	if h == nil {
		panic(&SetupMisuseError{Accessor: "harness.Get"})
	}
	return h
}

// Lookup returns the singleton if Setup has completed.
func Lookup() (*Harness, bool) {
	h := global.instance.Load()
	return h, h != nil
}

// teardown clears the global reference if it still points at h.
func (h *Harness) teardown() {
	if global.instance.CompareAndSwap(h, nil) {
		h.logger.Info("harness torn down", "action", h.action)
	}
}

// PushStep appends a step. Steps run in the order they were pushed.
func (h *Harness) PushStep(step TestStep) {
	h.steps.push(step)
}

// Steps returns the registered step names in execution order.
func (h *Harness) Steps() []string {
	return h.steps.names()
}

// Mode returns the run mode chosen at Setup.
func (h *Harness) Mode() Mode {
	return h.mode
}

// Action returns the default test action name.
func (h *Harness) Action() string {
	return h.action
}

// Context returns the plugin context the harness was set up with.
func (h *Harness) Context() host.PluginContext {
	return h.ctx
}

// Session returns the host capability handle acquired at Setup.
func (h *Harness) Session() host.Session {
	return h.session
}

// Logger returns the harness logger for use inside step operations.
func (h *Harness) Logger() *slog.Logger {
	return h.logger
}

// Test runs all steps and reports the outcome according to the mode.
// This is what the command hook and the trigger surface call.
func (h *Harness) Test() {
	h.Report(h.Run())
}
