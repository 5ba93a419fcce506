// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

/*
Package batch resolves whole lists of targets through the DNS daemon and
streams the findings as [types.NamedAddress] news, suitable for feeding a
verification stage or a live display.

	          +---+
	targets-->| B +-->ch NamedAddress
	          +---+

A [Batcher] never blocks on the daemon: lookups are enqueued and the
resulting promises awaited concurrently on a goroutine-limited worker pool,
so slow lookups do not hold up news about fast ones. The [AddressBook]
collects such news into a concurrency-safe map for rendering.

# Acknowledgements

Under its hood, [Batcher] leverages [gammazero/workerpool] as the limiting
goroutine pool.

[gammazero/workerpool]: https://github.com/gammazero/workerpool
*/
package batch
