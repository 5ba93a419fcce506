// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

/*
Package daemon implements netherd's generic background-daemon pattern: a
single worker goroutine drains a shared FIFO operation queue, executing each
operation exactly once and in submission order, while producers submit from
arbitrary goroutines without ever blocking.

Every netherd daemon subsystem is an instance of this pattern; the DNS
resolution daemon in [github.com/netherd/netherd/dnsd] is the canonical one.
Operations report their outcome through a [promise.Promise] bound at
submission time, so results become visible to any goroutine holding the
promise without ever touching the queue again.

The worker never waits unboundedly: between drain cycles it blocks on the
wake signal with a short poll-interval timeout and then rechecks the running
flag, which bounds shutdown latency by the poll interval.

[promise.Promise]: https://pkg.go.dev/github.com/netherd/netherd/promise
*/
package daemon
