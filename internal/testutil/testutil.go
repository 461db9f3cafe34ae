// Package testutil holds deterministic helpers shared by package tests.
package testutil

import "sync"

// Recorder records the order in which named things happened.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Hit records one call of name.
func (r *Recorder) Hit(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

// Calls returns the recorded names, oldest first.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many times name was recorded.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

// ExitRecorder stands in for os.Exit and records the codes it was given.
type ExitRecorder struct {
	mu    sync.Mutex
	codes []int
}

// Exit records code instead of terminating the process.
func (e *ExitRecorder) Exit(code int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.codes = append(e.codes, code)
}

// Codes returns the recorded exit codes.
func (e *ExitRecorder) Codes() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]int, len(e.codes))
	copy(out, e.codes)
	return out
}

// Env returns a lookup func over a fixed map, for os.LookupEnv injection.
func Env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}
