// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package types

import "fmt"

// Quality indicates how far a resolved network address has come in
// verification: unverified, in verification, verified, or invalid.
type Quality int

// The verification qualities of a network address.
const (
	Unverified Quality = iota // resolved, but neither in verification nor verified.
	Verifying                 // verification in progress.
	Invalid                   // verification failed.
	Verified                  // verification succeeded.
)

// String returns the clear-text representation of a Quality value.
func (q Quality) String() string {
	switch q {
	case Unverified:
		return "unverified"
	case Verifying:
		return "verifying"
	case Invalid:
		return "invalid"
	case Verified:
		return "verified"
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// IsPending returns true as long as no final verification verdict has been
// reached for an address.
func (q Quality) IsPending() bool {
	switch q {
	case Verified, Invalid:
		return false
	default:
		return true
	}
}
