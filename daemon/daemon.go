// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package daemon

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/netherd/netherd/metrics"
)

// DefaultPollInterval is the upper bound for the worker goroutine's wait
// between drain cycles. It bounds shutdown latency even in the event of a
// missed wake-up.
const DefaultPollInterval = 100 * time.Millisecond

// Operation is a unit of deferred work submitted to a [Daemon]. The daemon's
// worker goroutine executes each operation at most once, in submission order.
type Operation interface {
	// Execute performs the deferred work. Execute must report its outcome
	// through whatever result channel the operation was bound to at
	// submission time; it is never called twice.
	Execute()
	// Discarded is probed by the worker right before execution: operations
	// reporting true are dropped silently without executing. This realizes
	// cancel-by-abandonment; see [promise.Promise.Forget].
	Discarded() bool
}

// Daemon owns an operation queue together with exactly one worker goroutine
// draining it. Producers submit operations from arbitrary goroutines and are
// never blocked by a slow worker; the worker executes one operation at a
// time, strictly in submission order.
//
// A Daemon is constructed once by the host application and passed around
// explicitly; there is no process-wide daemon state.
type Daemon struct {
	name string
	log  *slog.Logger
	poll time.Duration
	met  *metrics.DaemonMetrics

	running atomic.Bool
	done    chan struct{} // closed by the worker goroutine on exit.
	wake    chan struct{} // capacity 1; producers signal "new work arrived".

	mu  sync.Mutex
	ops []Operation
}

// Option configures a [Daemon] during creation with New.
type Option func(*Daemon)

// WithLogger lets the daemon log through the specified logger instead of
// [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(d *Daemon) {
		d.log = log
	}
}

// WithPollInterval overrides the worker's bounded wait between drain cycles.
// Shorter intervals reduce worst-case shutdown latency at the price of more
// idle wake-ups.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Daemon) {
		d.poll = interval
	}
}

// WithMetrics instruments the daemon with the specified Prometheus
// collectors.
func WithMetrics(m *metrics.DaemonMetrics) Option {
	return func(d *Daemon) {
		d.met = m
	}
}

// New returns a new, not yet started daemon. The name is used in log records
// only.
func New(name string, options ...Option) *Daemon {
	d := &Daemon{
		name: name,
		poll: DefaultPollInterval,
		wake: make(chan struct{}, 1),
	}
	for _, opt := range options {
		opt(d)
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	return d
}

// Start spins up the daemon's single worker goroutine. Starting an already
// running daemon indicates a bug in the host application and panics; there is
// deliberately no supervisor-restart path.
func (d *Daemon) Start() {
	if !d.running.CompareAndSwap(false, true) {
		panic("daemon: " + d.name + ": only one running instance allowed at a time")
	}
	d.log.Info("daemon starting", "daemon", d.name)
	d.done = make(chan struct{})
	go d.worker()
}

// Stop terminates the worker goroutine and blocks until it has exited; any
// operations still queued afterwards are discarded without executing them, so
// their promises (if still held externally) stay pending forever. Stopping an
// already stopped daemon is a no-op.
//
// The order matters: the worker is joined first and the queue cleared only
// after, guaranteeing that no operation is mid-execution while the queue gets
// emptied.
func (d *Daemon) Stop() {
	if !d.running.CompareAndSwap(true, false) {
		return
	}
	d.log.Info("daemon stopping", "daemon", d.name)
	<-d.done
	dropped := d.clear()
	if dropped > 0 {
		d.log.Debug("dropped queued operations at shutdown",
			"daemon", d.name, "count", dropped)
	}
}

// Submit appends the specified operation to the queue and wakes the worker.
// Submit never blocks the producer (bounded only by memory) and may also be
// used while the daemon is stopped; queued operations are then executed once
// the daemon starts.
func (d *Daemon) Submit(op Operation) {
	d.mu.Lock()
	d.ops = append(d.ops, op)
	depth := len(d.ops)
	d.mu.Unlock()
	d.met.Submitted()
	d.met.QueueDepth(depth)
	select {
	case d.wake <- struct{}{}:
	default: // a wake-up is already pending.
	}
}

// Len returns the number of operations currently queued.
func (d *Daemon) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ops)
}

// clear drops all queued operations without executing them, returning how
// many were dropped.
func (d *Daemon) clear() int {
	d.mu.Lock()
	dropped := len(d.ops)
	d.ops = nil
	d.mu.Unlock()
	d.met.Discarded(dropped)
	d.met.QueueDepth(0)
	return dropped
}

// worker is the daemon loop: drain the queue to exhaustion, then recheck the
// running flag, then wait (bounded) for new work. The bounded wait keeps
// shutdown latency within the poll interval even if a wake signal is missed.
func (d *Daemon) worker() {
	defer close(d.done)
	d.log.Info("daemon started", "daemon", d.name)
	for {
		for d.drainOne() {
		}
		if !d.running.Load() {
			break
		}
		wecker := time.NewTimer(d.poll)
		select {
		case <-d.wake:
		case <-wecker.C:
		}
		wecker.Stop()
	}
	d.log.Info("daemon stopped", "daemon", d.name)
}

// drainOne executes the operation at the head of the queue, if any, and
// reports whether it processed an element. The head is peeked under the lock
// but executed outside of it, so a slow operation never stalls producers; as
// the worker is the only remover, the head is popped only after execution has
// finished.
func (d *Daemon) drainOne() bool {
	d.mu.Lock()
	var op Operation
	if len(d.ops) > 0 {
		op = d.ops[0]
	}
	d.mu.Unlock()
	if op == nil {
		return false
	}

	d.execute(op)

	d.mu.Lock()
	d.ops = d.ops[1:]
	depth := len(d.ops)
	d.mu.Unlock()
	d.met.QueueDepth(depth)
	return true
}

// execute runs a single operation, honoring abandonment and containing
// panics: one bad operation must never take the daemon down with it.
func (d *Daemon) execute(op Operation) {
	defer func() {
		if r := recover(); r != nil {
			d.met.Failed()
			d.log.Warn("operation panicked", "daemon", d.name, "panic", r)
		}
	}()
	if op.Discarded() {
		d.met.Discarded(1)
		d.log.Debug("discarding abandoned operation", "daemon", d.name)
		return
	}
	start := time.Now()
	op.Execute()
	d.met.Executed(time.Since(start))
}
