// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

/*
Package types defines the information model shared by netherd's streaming
pipeline stages: [QualifiedAddress] is an IP address with a verification
[Quality], and [NamedAddress] additionally keeps the host name the address
was resolved from.

The interface/value split (such as [QualifiedAddress] versus
[QualifiedAddressValue]) exists because pipeline stages pass these around
through channels while downstream integrations may want to attach their own
context to an address. Stages accept anything satisfying the interfaces; the
interfaces expose getters only plus copy-on-update WithQuality, keeping the
values effectively immutable in flight and the stages free of locking.
*/
package types
