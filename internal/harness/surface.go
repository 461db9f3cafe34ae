package harness

// surfaceState is the trigger surface's two-state machine.
type surfaceState int

const (
	surfaceArmed surfaceState = iota
	surfaceFired
)

// triggerSurface fires the run on the first host poll in automated mode,
// so an unattended host needs no command invocation. Armed moves to Fired
// before the run starts and never moves back.
type triggerSurface struct {
	state surfaceState
}

// Run implements host.ControlSurface.
func (s *triggerSurface) Run() {
	if s.state == surfaceFired {
		return
	}
	s.state = surfaceFired

	h, ok := Lookup()
	if !ok {
		return
	}
	h.logger.Debug("deferred trigger fired")
	h.Test()
}
