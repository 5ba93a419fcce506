// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package batch

import (
	"context"
	"log/slog"
	"net/netip"
	"strconv"

	"github.com/netherd/netherd/dnsd"
	"github.com/netherd/netherd/types"

	"github.com/gammazero/workerpool"
)

// Target is one host name (or address literal) plus the port to combine the
// resolved address with.
type Target struct {
	Host string
	Port uint16
}

// String returns the target in "host:port" format.
func (t Target) String() string {
	return t.Host + ":" + strconv.Itoa(int(t.Port))
}

// Batcher resolves whole lists of targets through a [dnsd.DNSDaemon] and
// streams its findings over a “news” channel as they come in: first the bare
// names as they get submitted, later the resolved (and yet unverified)
// addresses.
//
// By connecting the news channel to a [verify.Verifier] the reachability of
// the resolved addresses can automatically be verified by pinging them.
//
// While the daemon executes the queued lookups strictly one at a time, the
// Batcher awaits the resulting promises on a goroutine-limited worker pool,
// so news appear as soon as individual lookups settle.
type Batcher struct {
	daemon  *dnsd.DNSDaemon
	workers *workerpool.WorkerPool
	news    chan types.NamedAddress
	log     *slog.Logger
}

// BatcherOption can be passed to New when creating new [Batcher] objects.
type BatcherOption func(*Batcher)

// WithLogger lets the batcher log through the specified logger instead of
// [slog.Default].
func WithLogger(log *slog.Logger) BatcherOption {
	return func(b *Batcher) {
		b.log = log
	}
}

// New returns a new Batcher resolving through the specified (started) DNS
// daemon with a maximum of size parallel promise awaiters, together with its
// news channel. The news channel is closed by [Batcher.StopWait] only, never
// by the Batcher itself.
func New(d *dnsd.DNSDaemon, size int, options ...BatcherOption) (*Batcher, <-chan types.NamedAddress) {
	news := make(chan types.NamedAddress, size)
	b := &Batcher{
		daemon:  d,
		workers: workerpool.New(size),
		news:    news,
	}
	for _, opt := range options {
		opt(b)
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	return b, news
}

// Resolve enqueues lookups for all specified targets and returns without
// waiting for the results; these are streamed to the news channel instead.
// Each target is first announced on the news channel as a bare name so
// consumers know what is going to be resolved next; resolved addresses follow
// with quality [types.Unverified]. Targets failing resolution produce no
// address news, only the initial announcement.
//
// In case the specified context gets cancelled, Resolve stops announcing and
// the awaiters abandon their pending lookups.
func (b *Batcher) Resolve(ctx context.Context, targets []Target) {
	for _, target := range targets {
		target := target
		// Announce what is about to be resolved, so interactive consumers can
		// set up their display early.
		select {
		case b.news <- &types.NamedAddressValue{Host: target.Host}:
		case <-ctx.Done():
			return
		}
		slot := new(netip.AddrPort)
		p := b.daemon.EnqueueForLookup(slot, target.Host, target.Port)
		b.workers.Submit(func() {
			if err := p.Wait(ctx); err != nil {
				// Nobody cares for the result anymore; advise the daemon to
				// skip the lookup if it hasn't come around to it yet.
				p.Forget()
				return
			}
			if !p.IsSuccess() {
				b.log.Debug("batch lookup failure",
					"host", target.Host, "port", target.Port, "err", p.Err())
				return
			}
			select {
			case b.news <- &types.NamedAddressValue{
				Host: target.Host,
				QualifiedAddressValue: types.QualifiedAddressValue{
					Address: slot.Addr().String(),
					Quality: types.Unverified,
				},
			}:
			case <-ctx.Done():
			}
		})
	}
}

// StopWait waits for all pending lookups to settle and their news to be sent,
// then closes the news channel.
func (b *Batcher) StopWait() {
	b.workers.StopWait()
	close(b.news)
}
