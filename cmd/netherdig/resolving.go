// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"os"
	"time"

	"github.com/netherd/netherd/batch"
	"github.com/netherd/netherd/dnsd"
	"github.com/netherd/netherd/verify"

	"github.com/gosuri/uilive"
	"github.com/miekg/dns"
)

// ResolveAndReport spins up a DNS lookup daemon, feeds it the given targets
// and live-renders the results as they trickle in. With address verification
// enabled, resolved addresses additionally get pinged and the live display
// reflects their reachability verdicts.
func ResolveAndReport(ctx context.Context, targets []batch.Target) error {
	daemonopts := []dnsd.DNSDaemonOption{
		dnsd.WithLookupTimeout(*lookupTimeout),
	}
	if *resolverAddress != "" {
		daemonopts = append(daemonopts,
			dnsd.WithResolver(dnsd.NewClientResolver(new(dns.Client), *resolverAddress)))
	}
	daemon := dnsd.New(daemonopts...)
	daemon.Start()
	defer daemon.Stop()

	// Create an empty (concurrency-safe) address book and immediately fire off
	// the rendering goroutine. The rendering will only stop after tracking has
	// finished because the news channel has been closed. We then render a
	// final update and end rendering, signalling the end of our activities via
	// renderingDone.
	book := batch.NewAddressBook()
	trackingDone := make(chan struct{})
	renderingDone := make(chan struct{})

	go func() {
		// Dunno what uilive's background updating mode using Start() is good
		// for? It may trigger anytime with the rendering into the buffer not
		// yet complete, thus making the terminal output very flickery. So we
		// avoid Start() and instead trigger an explicit flush to the terminal
		// after having completed the rendering.
		term := uilive.New()
		renderer := newRenderer(term, len(targets))
		renderer.Indentation = int(*indentation)
		defer func() {
			renderData(term, renderer, book)
			renderer.Stop()
			close(renderingDone)
		}()
		renderData(term, renderer, book)
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				renderData(term, renderer, book)
			case <-trackingDone:
				return
			}
		}
	}()

	// Now lets put the required processing elements and their plumbing in
	// place.
	//
	//   - Batcher producing IP addresses from the list of targets.
	//   - optionally a Verifier consuming the IPs and checking them,
	//     producing "verdicts".
	//   - AddressBook consuming the news.
	//
	// Rendering is done on the information collected by the AddressBook.
	batcher, resolved := batch.New(daemon, int(*workerNumber))
	news := resolved
	if *verifyAddresses {
		verifieropts := []verify.PingerOption{}
		if os.Geteuid() != 0 {
			verifieropts = append(verifieropts, verify.AsUnprivileged())
		}
		verifier, verified := verify.New(int(*workerNumber), verifieropts...)
		go verifier.Verify(ctx, resolved)
		news = verified
	}
	go func() {
		_ = book.Track(ctx, news)
		close(trackingDone)
	}()

	// Finally feed the targets into the Batcher, so they can be processed and
	// move through the different stages. Then close the input stream and wait
	// for all the data to pass the stages and finally get rendered a last
	// time.
	go func() {
		batcher.Resolve(ctx, targets)
		batcher.StopWait()
	}()
	<-renderingDone

	return nil
}

// renderData gets the current named+qualified address data and then renders
// (and flushes) it to the terminal.
func renderData(term *uilive.Writer, r *renderer, book *batch.AddressBook) {
	r.Render(book.Snapshot())
	term.Flush()
}
