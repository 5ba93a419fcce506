// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package verify

import (
	"context"

	"github.com/netherd/netherd/types"
)

// Verifier verifies a stream of named addresses, deduplicating verification
// through an [AddrCache] so the same address is never pinged twice on behalf
// of different host names.
type Verifier struct {
	news    chan types.NamedAddress
	pinger  *Pinger
	checked <-chan types.QualifiedAddress
}

// New returns a new Verifier with a maximum of size parallel verification
// workers, together with its news channel carrying the (intermediate and
// final) verification verdicts.
func New(size int, options ...PingerOption) (*Verifier, <-chan types.NamedAddress) {
	news := make(chan types.NamedAddress, size)
	pinger, checked := NewPinger(size, options...)
	return &Verifier{
		news:    news,
		pinger:  pinger,
		checked: checked,
	}, news
}

// Verify verifies the incoming stream of named addresses until the input
// channel is closed; it then waits for all enqueued verifications to complete
// before closing the news channel and returning. Callers typically run Verify
// in a separate goroutine.
//
// Incoming addresses without an address value (bare name announcements) are
// passed on to the news channel unmodified. In case the specified context
// gets done, Verify stops pulling in new work and returns as soon as
// possible, closing the news channel.
func (v *Verifier) Verify(ctx context.Context, in <-chan types.NamedAddress) {
	cache := NewAddrCache()
	// Feed verdicts trickling in from the pinger through the cache, which
	// fans them out to all waiting host names on the news channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case verdict, ok := <-v.checked:
				if !ok {
					return
				}
				cache.Update(ctx, verdict.(types.NamedAddress), v.news)
			case <-ctx.Done():
				return
			}
		}
	}()
	// Pull in named addresses, kicking off a verification whenever an address
	// is seen for the very first time. Addresses already seen for other names
	// are served from the cache, or put on hold until the verdict arrives.
slurp:
	for {
		select {
		case namaddr, ok := <-in:
			if !ok {
				break slurp
			}
			if namaddr.Addr() == "" {
				// A bare name announcement; pass it on directly.
				select {
				case v.news <- namaddr:
				case <-ctx.Done():
					break slurp
				}
				continue
			}
			if cache.Update(ctx, namaddr, v.news) {
				v.pinger.ValidateQA(ctx, namaddr)
			}
		case <-ctx.Done():
			break slurp
		}
	}
	v.pinger.StopWait()
	// Wait for all verdicts to have come through before calling it a day; the
	// feeder goroutine bails out quickly anyway when the context is done, and
	// joining it first ensures nothing can still send on the news channel when
	// it gets closed.
	<-done
	close(v.news)
}
