// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package promise

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// State is the settlement state of a [Promise].
type State int

// The settlement states of a promise.
const (
	Pending   State = iota // not yet settled.
	Succeeded              // settled successfully.
	Failed                 // settled with an error.
)

// String returns the clear-text representation of a State value.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Promise is a single-assignment result channel shared between the producer
// of an operation and the daemon goroutine that eventually executes it. A
// promise starts out Pending and settles exactly once, either into Succeeded
// or into Failed carrying an error. Settling an already-settled promise is a
// contract violation of the host application and panics.
//
// Settlement synchronizes with all observers: any goroutine that sees the
// promise as settled, be it through [Promise.Wait], [Promise.WaitTimeout] or
// the query methods, also sees all memory writes the settling goroutine
// performed before settling. Operations rely on this to publish their result
// value through a shared slot just before calling [Promise.SetSuccess].
type Promise struct {
	abandoned atomic.Bool

	mu      sync.Mutex
	state   State
	err     error
	settled chan struct{}
}

// New returns a new promise in Pending state.
func New() *Promise {
	return &Promise{settled: make(chan struct{})}
}

// SetSuccess settles the promise as Succeeded and wakes all waiters. It
// panics if the promise has already been settled.
func (p *Promise) SetSuccess() {
	p.settle(Succeeded, nil)
}

// SetFailure settles the promise as Failed carrying the specified error and
// wakes all waiters. It panics if the promise has already been settled.
func (p *Promise) SetFailure(err error) {
	p.settle(Failed, err)
}

func (p *Promise) settle(state State, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Pending {
		panic(fmt.Sprintf("promise: settling an already %s promise", p.state))
	}
	p.state = state
	p.err = err
	close(p.settled)
}

// State returns the current settlement state.
func (p *Promise) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsSettled returns true if the promise has been settled, either successfully
// or with an error.
func (p *Promise) IsSettled() bool {
	return p.State() != Pending
}

// IsSuccess returns true if the promise settled successfully.
func (p *Promise) IsSuccess() bool {
	return p.State() == Succeeded
}

// Err returns the error a Failed promise was settled with, or nil as long as
// the promise is Pending or when it Succeeded.
func (p *Promise) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Wait blocks the calling goroutine until the promise settles or the
// specified context is done, whichever comes first. It returns nil on
// settlement and the context's error otherwise. Waiting never cancels the
// underlying operation.
func (p *Promise) Wait(ctx context.Context) error {
	select {
	case <-p.settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitTimeout blocks until the promise settles, but at most for the specified
// duration. It reports whether the promise settled in time. Timing out never
// cancels the underlying operation, it only stops this caller from blocking
// any further.
func (p *Promise) WaitTimeout(d time.Duration) bool {
	wecker := time.NewTimer(d)
	defer wecker.Stop()
	select {
	case <-p.settled:
		return true
	case <-wecker.C:
		return false
	}
}

// Settled returns a channel that is closed upon settlement, for callers that
// want to select on a promise alongside other channels.
func (p *Promise) Settled() <-chan struct{} {
	return p.settled
}

// Forget marks the promise as abandoned: the producer declares that nobody
// cares for the result anymore. A daemon probes this flag right before
// executing the associated operation and then silently discards the work,
// leaving the promise Pending forever. Abandonment is advisory and racy: an
// operation the daemon has already reached will still execute.
func (p *Promise) Forget() {
	p.abandoned.Store(true)
}

// Abandoned reports whether the producer has abandoned this promise.
func (p *Promise) Abandoned() bool {
	return p.abandoned.Load()
}
