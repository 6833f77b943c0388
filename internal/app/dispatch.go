package app

import "sync"

// Dispatcher serializes all user-visible state transitions onto one
// goroutine. Hotkey callbacks and background workers hand closures here
// instead of touching app state directly.
type Dispatcher struct {
	mu     sync.Mutex
	ch     chan func()
	closed bool
	done   chan struct{}
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		ch:   make(chan func(), 64),
		done: make(chan struct{}),
	}
}

// Run executes queued closures until Stop is called. It blocks; callers
// run it as their main loop.
func (d *Dispatcher) Run() {
	defer close(d.done)
	for f := range d.ch {
		f()
	}
}

// Do queues f for execution on the dispatch goroutine. After Stop it is a
// no-op, so late background results cannot panic a shut-down app.
func (d *Dispatcher) Do(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.ch <- f
}

// Stop ends the loop after draining queued work.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.ch)
	d.mu.Unlock()
	<-d.done
}
