// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package verify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/netherd/netherd/types"

	"github.com/gammazero/workerpool"
	"github.com/go-ping/ping"
)

// Pinger verifies IP addresses by pinging them, streaming the final
// [types.QualifiedAddress] verdicts to its verdict channel. Pingers use a
// goroutine-limited worker pool, so lots of addresses can be verified without
// flooding the network or the scheduler.
type Pinger struct {
	count               int           // number of pings to send per address.
	interval            time.Duration // distance between consecutive pings.
	thresholdPercentage uint          // percentage of replies required for a Verified verdict.
	unprivileged        bool          // if true, uses UDP-based pings instead of privileged ICMPs.

	workers  *workerpool.WorkerPool
	verdicts chan types.QualifiedAddress
	stopOnce sync.Once
}

// PingerOption can be passed to NewPinger when creating new [Pinger] objects.
type PingerOption func(*Pinger)

// NewPinger returns a new [Pinger] with a worker pool of the specified
// maximum size, together with its verdict channel. The channel carries not
// only the final verdicts but also an initial "verifying" notice for each
// address as it enters verification, so interactive consumers can set up
// their display early.
//
// The new pinger defaults to pinging 3 times at 1s intervals with a validity
// threshold of 50(%).
func NewPinger(size int, options ...PingerOption) (*Pinger, <-chan types.QualifiedAddress) {
	return newPinger(size, size, options...)
}

// newPinger additionally controls the verdict channel's buffer size,
// something only tests ever need.
func newPinger(workersize int, chansize int, options ...PingerOption) (*Pinger, <-chan types.QualifiedAddress) {
	verdicts := make(chan types.QualifiedAddress, chansize)
	p := &Pinger{
		count:               3,
		interval:            time.Second,
		thresholdPercentage: 50,
		workers:             workerpool.New(workersize),
		verdicts:            verdicts,
	}
	for _, opt := range options {
		opt(p)
	}
	return p, verdicts
}

// WithCount sets the number of pings per address.
func WithCount(count uint) PingerOption {
	return func(p *Pinger) {
		p.count = int(count)
	}
}

// WithInterval sets the interval between consecutive pings.
func WithInterval(interval time.Duration) PingerOption {
	return func(p *Pinger) {
		p.interval = interval
	}
}

// AsUnprivileged tells the Pinger to carry out unprivileged pings using UDP
// instead of ICMP packets.
func AsUnprivileged() PingerOption {
	return func(p *Pinger) {
		p.unprivileged = true
	}
}

// WithThresholdPercentage takes a percentage between 0 and 100 specifying the
// share of successful ping replies required to declare an address Verified.
func WithThresholdPercentage(threshold uint) PingerOption {
	if threshold > 100 {
		panic(fmt.Errorf("verify: threshold must be a percentage between 0 <= threshold <= 100, got: %d",
			threshold))
	}
	return func(p *Pinger) {
		p.thresholdPercentage = threshold
	}
}

// Validate the specified IP address by pinging it, with the verdict sent to
// the pinger's verdict channel. Use address literals rather than DNS names:
// a name resolving into several addresses verifies the name, not a specific
// address.
//
// The verification is aborted when the specified context gets done; the
// address is then considered Invalid, but due to the uncontrollable order of
// verdict sending versus cancellation detection a spurious verdict may or may
// not still appear on the channel.
func (p *Pinger) Validate(ctx context.Context, addr string) {
	p.validate(ctx, &types.QualifiedAddressValue{
		Address: addr,
		Quality: types.Verifying,
	})
}

// ValidateQA validates the specified [types.QualifiedAddress], otherwise
// working like [Pinger.Validate] for a plain address string. Whatever
// concrete type hides behind the interface is preserved in the verdicts, so
// named addresses come out as named addresses again.
func (p *Pinger) ValidateQA(ctx context.Context, addr types.QualifiedAddress) {
	p.validate(ctx, addr.WithQuality(types.Verifying, nil))
}

// ValidateStream reads addresses to be validated from a channel until the
// channel is closed or the specified context gets done; callers typically run
// it in a separate goroutine. The Quality of incoming addresses is ignored.
func (p *Pinger) ValidateStream(ctx context.Context, ch <-chan types.QualifiedAddress) {
	for {
		select {
		case addr, ok := <-ch:
			if !ok {
				return
			}
			p.validate(ctx, addr.WithQuality(types.Verifying, nil))
		case <-ctx.Done():
			return
		}
	}
}

// validate does the real work; the caller is expected to pass in an address
// with its quality already set to Verifying, avoiding an unnecessary clone.
func (p *Pinger) validate(ctx context.Context, verdict types.QualifiedAddress) {
	// Sending the in-flight notice is context-cancellable so that a blocked
	// send cannot leak this goroutine.
	select {
	case p.verdicts <- verdict: // not yet the final one ;)
	case <-ctx.Done():
		return
	}
	p.workers.Submit(func() {
		verdict := verdict.WithQuality(types.Invalid, nil)
		defer func() {
			// Again, a blocked verdict send must not leak the worker.
			select {
			case p.verdicts <- verdict: // final one this time.
			case <-ctx.Done():
				return
			}
		}()
		// A quick non-blocking check whether the context is already done
		// before starting any actual work...
		select {
		case <-ctx.Done():
			verdict = verdict.WithQuality(types.Invalid, ctx.Err())
			return
		default:
		}

		pinger, err := ping.NewPinger(verdict.Addr())
		if err != nil {
			verdict = verdict.WithQuality(types.Invalid, err)
			return
		}
		pinger.SetPrivileged(!p.unprivileged)
		pinger.Count = p.count
		pinger.Interval = p.interval
		// Always limit waiting for the last ping to get reflected (or not)!
		pinger.Timeout = time.Duration(int64(p.interval) * int64(p.count+2))
		// While the pings are running, watch the context so cancellation can
		// abort the run early; done here terminates that watcher, not the
		// ping run.
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				pinger.Stop()
			case <-done:
			}
		}()
		if err := pinger.Run(); err != nil {
			verdict = verdict.WithQuality(types.Invalid, err)
			return
		}
		if err := ctx.Err(); err != nil {
			verdict = verdict.WithQuality(types.Invalid, err)
			return
		}
		stats := pinger.Statistics()
		if stats.PacketsRecv < pinger.Count*int(p.thresholdPercentage)/100 {
			verdict = verdict.WithQuality(types.Invalid,
				errors.New("no replies or too many losses"))
			return
		}
		verdict = verdict.WithQuality(types.Verified, nil)
	})
}

// StopWait waits for all queued verifications to get processed and then
// finally closes the verdict channel. Stopping more than once is fine.
func (p *Pinger) StopWait() {
	p.stopOnce.Do(func() {
		p.workers.StopWait()
		close(p.verdicts)
	})
}
