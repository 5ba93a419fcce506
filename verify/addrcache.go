// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package verify

import (
	"context"
	"sync"

	"github.com/netherd/netherd/types"
)

// AddrCache caches verification verdicts per IP address so that the same
// address, resolved from several host names, gets verified only once; the
// verdict is then fanned out to all names waiting for it.
type AddrCache struct {
	mu sync.Mutex
	m  map[string]verdictConsumers // IP address -> verdict plus waiting names.
}

// NewAddrCache returns a new and properly initialized AddrCache.
func NewAddrCache() *AddrCache {
	return &AddrCache{
		m: map[string]verdictConsumers{},
	}
}

// verdictConsumers is the most recent quality of one address, together with
// the host names that want to learn about any further quality updates.
type verdictConsumers struct {
	q         types.Quality
	err       error    // optional reason for an Invalid verdict.
	consumers []string // host names waiting for quality updates.
}

// Update checks the specified named address against the cache and reports
// whether it is a brand-new (unverified) address, in which case the caller
// should start verifying it. For addresses already cached, the name is
// registered as a consumer of future updates, or served the cached final
// verdict right away; quality updates for a cached address get fanned out to
// all of its registered consumers through the news channel.
func (c *AddrCache) Update(ctx context.Context, namaddr types.NamedAddress, news chan<- types.NamedAddress) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	addr := namaddr.Addr()
	vc, cached := c.m[addr]
	if !cached {
		// First time we see this address; new addresses always enter in
		// quality Unverified or Verifying, so a later quality update is
		// always to be expected.
		c.m[addr] = verdictConsumers{
			q:         namaddr.Qual(),
			consumers: []string{namaddr.Name()},
		}
		select {
		case news <- namaddr:
		case <-ctx.Done():
		}
		return true
	}
	knownConsumer := false
	host := namaddr.Name()
	for _, consumer := range vc.consumers {
		if consumer == host {
			knownConsumer = true
		}
	}
	if namaddr.Qual() <= vc.q {
		// The update is stale; serve the most recent quality known, but only
		// for this specific name, as no other consumers are affected.
		if !knownConsumer {
			vc.consumers = append(vc.consumers, host)
			c.m[addr] = vc
			select {
			case news <- namaddr.WithQuality(vc.q, vc.err).(types.NamedAddress):
			case <-ctx.Done():
			}
		}
		return false
	}
	vc.q = namaddr.Qual()
	vc.err = namaddr.Err()
	var consumers []string
	switch vc.q {
	case types.Unverified, types.Verifying:
		// Still in verification: keep all consumers registered for the final
		// verdict yet to come.
		if !knownConsumer {
			vc.consumers = append(vc.consumers, host)
		}
		consumers = vc.consumers
	default:
		// A final verdict: notify all registered consumers and clear the
		// registration list, as no further quality changes will ever arrive
		// for this address.
		consumers, vc.consumers = vc.consumers, nil
	}
	c.m[addr] = vc
	templ := namaddr.Named()
	templ.Quality = namaddr.Qual()
	for _, consumer := range consumers {
		update := templ
		update.Host = consumer
		select {
		case news <- &update:
		case <-ctx.Done(): // bail out immediately.
			return false
		}
	}
	return false
}
