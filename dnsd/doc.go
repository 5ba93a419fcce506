// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

/*
Package dnsd implements netherd's DNS resolution daemon: the concrete
instantiation of the generic background-daemon job/promise pattern from
[github.com/netherd/netherd/daemon].

A [DNSDaemon] owns a single worker goroutine draining a FIFO queue of lookup
operations. Producers call [DNSDaemon.EnqueueForLookup] and immediately get a
promise back; the worker later performs the blocking lookup and settles the
promise, publishing the resolved socket address through a shared result slot
strictly before settlement. Callers on their own goroutine may instead use the
synchronous [DNSDaemon.LookUp].

Resolution backends are pluggable through the [Resolver] interface: the
[SystemResolver] goes through the operating system's resolver mechanism, while
a [ClientResolver] directs A/AAAA queries at one specific DNS server using
[miekg/dns].

[miekg/dns]: https://github.com/miekg/dns
*/
package dnsd
