// Package simhost is an in-process stand-in for a real-time host
// application.
//
// It implements the host capability surface from package host on top of a
// single cooperative processing loop. Each cycle the loop:
//
//  1. dispatches queued command invocations through the hook commands, in
//     registration order, until one reports the command handled
//  2. polls every registered control surface
//
// Plugin callbacks run on the loop goroutine only. Panics escaping them are
// caught by the host, written to its console and recorded, the way a host
// shows a plugin error and carries on.
package simhost
