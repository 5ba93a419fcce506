// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

/*
Package verify implements reachability verification of resolved IP addresses
by pinging them, with caching so that an address shared by several host names
is verified only once.

A [Pinger] verifies individual addresses on a goroutine-limited worker pool,
streaming verdicts as they are decided:

	         +---+
	string-->| P +-->ch QualifiedAddress
	         +---+

⚠ A Pinger emits any newly submitted address before it undergoes verification
(with its quality set to “verifying”) as well as the final verdict later, so
interactive clients can show enqueued verifications early.

A [Verifier] wraps a Pinger for stream processing, reading named addresses
from an input channel (such as the news channel of a batch.Batcher) and
fanning cached verdicts out to all host names sharing an address:

	                  +---+
	ch NamedAddress-->| V +-->ch NamedAddress
	                  +---+

# Acknowledgements

Under its hood, [Pinger] leverages [go-ping/ping] for the actual pinging and
[gammazero/workerpool] as the limiting goroutine pool.

[go-ping/ping]: https://github.com/go-ping/ping
[gammazero/workerpool]: https://github.com/gammazero/workerpool
*/
package verify
