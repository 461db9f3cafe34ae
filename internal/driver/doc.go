// Package driver runs a host application with the harness in automated mode
// and turns its exit into a verdict.
//
// The harness inside the host has no assertion channel to the outside, so
// the driver reads the only signals it has: the exit code and the console
// streams.
//
//	exit 0   -> passed
//	exit 172 -> failed, reason taken from the failure banner on stderr
//	anything else (other codes, killed by a signal) -> crashed
package driver
