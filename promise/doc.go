// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

/*
Package promise implements the write-once, read-many result channel used by
netherd's background daemons to report operation outcomes across goroutines.

A [Promise] is created by a producer when submitting an operation to a daemon,
settled exactly once by the daemon goroutine while executing the operation,
and observed by whoever holds the promise: by polling, by selecting on
[Promise.Settled], or by blocking in [Promise.Wait]/[Promise.WaitTimeout].

Fire-and-forget is a supported usage mode: a producer that never inspects its
promise simply never learns of success or failure. Going one step further, a
producer may call [Promise.Forget] to advise the daemon that the result isn't
wanted anymore, so work not yet started can be skipped entirely.
*/
package promise
