// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

/*
Package fault defines the typed error value netherd daemons store into
promises when an operation fails. A [Fault] carries a [StatusCode] and a
message, plus the originating source location for diagnostics.

Failures crossing the daemon boundary come in two families: faults raised by
the framework itself keep their specific status code and payload, while any
other error gets normalized into a generic internal fault. [Normalize]
implements exactly this two-path translation.
*/
package fault
