// Package harness runs integration tests for plugins inside their host.
//
// Plugin code cannot be driven from outside the host process, so the
// harness registers itself with the host as a command and, when running
// unattended, as a control surface polled by the host loop. Results leave
// the process through exit codes and console streams.
//
// # Usage
//
// Call Setup once from the plugin-load callback and push steps:
//
//	func Load(ctx host.PluginContext) error {
//	    h, err := harness.Setup(ctx, "my_plugin_tests")
//	    if err != nil {
//	        return err
//	    }
//	    h.PushStep(harness.NewStep("hello", func(h *harness.Harness) error {
//	        h.Session().ShowConsoleMsg("Hello world!\n")
//	        return nil
//	    }))
//	    return nil
//	}
//
// # Modes
//
// With RUN_INHOST_INTEGRATION_TEST set (any value) the harness is in
// automated mode: the run fires on the first host poll and the process
// exits with 0 on success or 172 on failure, the reason printed to stderr.
//
// Without it the harness is interactive: the run fires when the test action
// is invoked, success prints a banner and failure panics so the host shows
// the reason; the host keeps running either way.
//
// # Execution model
//
// Every entry point runs on the host's single processing thread. Steps run
// strictly in order, fail fast, with no retries and no timeouts; a slow step
// stalls the host loop.
package harness
