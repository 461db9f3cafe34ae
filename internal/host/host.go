// Package host describes the slice of a host application's plugin API that
// the test harness consumes.
//
// A host is a long-running process with its own single-threaded processing
// loop. It loads plugins by calling a load callback with a PluginContext and
// afterwards calls back into the plugin only from that loop:
//
//   - hook commands, once per command invocation
//   - control surfaces, once per processing cycle
//   - teardown hooks, once at plugin unload or process end
//
// Nothing in this package is safe for concurrent use unless a method says so.
package host

import "fmt"

// CommandID is a host-assigned numeric identifier bound to a named action.
type CommandID uint32

// String renders the id the way hosts print it in their action lists.
func (id CommandID) String() string {
	return fmt.Sprintf("_%d", uint32(id))
}

// HookCommand intercepts every command invocation in the host.
// Returning true reports the command as handled and suppresses the host's
// default handling; false lets other listeners see the event.
type HookCommand func(id CommandID, flag int) bool

// ControlSurface is polled by the host once per processing cycle.
type ControlSurface interface {
	Run()
}

// ActionBinding registers a command in the host's action list.
// A nil Key means the action has no keyboard shortcut.
type ActionBinding struct {
	Command     CommandID
	Description string
	Key         *KeyBinding
}

// KeyBinding is a keyboard shortcut for an action.
type KeyBinding struct {
	Modifiers uint8
	Key       uint16
}

// Session is the set of host capabilities available after plugin load.
type Session interface {
	// AddCommandID allocates (or returns the existing) id for a named command.
	AddCommandID(name string) (CommandID, error)

	// AddActionBinding makes a command visible as an invocable action.
	AddActionBinding(binding ActionBinding) error

	// AddHookCommand installs a process-wide command hook.
	AddHookCommand(hook HookCommand) error

	// AddControlSurface registers a surface polled once per cycle.
	AddControlSurface(surface ControlSurface) error

	// ShowConsoleMsg writes to the host's own console window.
	ShowConsoleMsg(msg string)
}

// PluginContext is handed to the plugin-load callback.
type PluginContext interface {
	// Session produces the host capability object. Hosts may return the
	// same Session for every call; callers should acquire it once.
	Session() (Session, error)

	// RegisterTeardownHook registers fn to run at plugin unload.
	RegisterTeardownHook(fn func())
}

// PluginEntry is the plugin-load callback a host invokes.
type PluginEntry func(ctx PluginContext) error
