// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package batch

import (
	"context"
	"sync"

	"github.com/netherd/netherd/types"
)

// NamedAddressSet is a host name together with the list of its resolved, qualified
// addresses.
type NamedAddressSet struct {
	Host      string                        `json:"host"`      // the host name.
	Addresses []types.QualifiedAddressValue `json:"addresses"` // resolved address(es) with quality.
}

// AddressBook collects named-address news from a stream into a
// concurrency-safe host-to-addresses map, for rendering or reporting. Typical
// usage is to run [AddressBook.Track] on the news channel of a [Batcher] or
// of a verify.Verifier.
type AddressBook struct {
	mu sync.Mutex
	m  map[string][]types.QualifiedAddressValue
}

// NewAddressBook returns a new and properly initialized AddressBook.
func NewAddressBook() *AddressBook {
	return &AddressBook{
		m: map[string][]types.QualifiedAddressValue{},
	}
}

// Snapshot returns all entries currently in the book.
func (b *AddressBook) Snapshot() []NamedAddressSet {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := make([]NamedAddressSet, 0, len(b.m))
	for host, addrs := range b.m {
		addresses := make([]types.QualifiedAddressValue, len(addrs))
		copy(addresses, addrs)
		entries = append(entries, NamedAddressSet{
			Host:      host,
			Addresses: addresses,
		})
	}
	return entries
}

// Update the book with a named address: unknown addresses get appended, known
// ones only ever move forward in quality (unverified to verifying, verifying
// to a final verdict), so stale news arriving late cannot regress an entry. A
// bare name without an address registers the host, with its address list
// still empty.
func (b *AddressBook) Update(namaddr types.NamedAddress) {
	if namaddr == nil {
		return
	}
	host := namaddr.Name()
	if host == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	addrs, known := b.m[host]
	addr := namaddr.Addr()
	if !known {
		if addr == "" {
			b.m[host] = []types.QualifiedAddressValue{}
		} else {
			b.m[host] = []types.QualifiedAddressValue{namaddr.Value()}
		}
		return
	}
	if addr == "" {
		return
	}
	for idx := range addrs {
		if addrs[idx].Address == addr {
			if namaddr.Qual() > addrs[idx].Quality {
				addrs[idx].Quality = namaddr.Qual()
			}
			return
		}
	}
	b.m[host] = append(addrs, namaddr.Value())
}

// Track consumes named-address news from the specified channel until the
// channel is closed or the context is done, updating the book as the news
// come in.
func (b *AddressBook) Track(ctx context.Context, news <-chan types.NamedAddress) error {
	for {
		select {
		case namaddr, ok := <-news:
			if !ok {
				return nil
			}
			b.Update(namaddr)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
