package simhost

import "sync"

// commandQueue is a FIFO of command names waiting for the next cycle.
//
// Enqueue is safe from any goroutine (an external script pressing actions);
// drain is called only from the loop.
type commandQueue struct {
	mu     sync.Mutex
	names  []string
	closed bool
}

func newCommandQueue() *commandQueue {
	return &commandQueue{names: make([]string, 0, 8)}
}

// enqueue appends a command name. Returns false once the queue is closed.
func (q *commandQueue) enqueue(name string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.names = append(q.names, name)
	return true
}

// drain removes and returns everything queued so far. Commands enqueued by
// callbacks during dispatch wait for the following cycle.
func (q *commandQueue) drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.names
	q.names = make([]string, 0, 8)
	return out
}

// close makes later enqueues fail.
func (q *commandQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
