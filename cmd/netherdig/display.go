// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"net/netip"
	"sort"
	"strings"

	"github.com/netherd/netherd/batch"
	"github.com/netherd/netherd/types"
)

// renderer renders the terminal display, based on named+qualified address
// information passed to its Render method.
type renderer struct {
	Indentation int
	total       int
	w           io.Writer
	spinner     *spinner
}

// newRenderer returns a renderer object rendering to the specified io.Writer.
// total is the number of targets that were asked to be resolved, so the
// header can show the overall progress.
func newRenderer(w io.Writer, total int) *renderer {
	sp := newSpinner()
	sp.Start(*spinnerInterval)
	return &renderer{
		total:   total,
		w:       w,
		spinner: sp,
	}
}

// Stop the renderer's background ticker.
func (r *renderer) Stop() {
	r.spinner.Stop()
}

// Render the given named+qualified address sets.
func (r *renderer) Render(sets []batch.NamedAddressSet) {
	// If we don't have any name+addressing information yet, show a proxy
	// message.
	if len(sets) == 0 {
		fmt.Fprintf(r.w, "looking up %d name(s)...\n", r.total)
		return
	}
	sortNamedAddressSets(sets)
	// For neat display, determine the length of the longest host name in the
	// data to display, so that the addresses column doesn't zig-zag around.
	maxlen := 0
	for _, set := range sets {
		if l := len(set.Host); l > maxlen {
			maxlen = l
		}
	}
	fmt.Fprintf(r.w, "resolved %d of %d name(s)\n", len(sets), r.total)
	for _, set := range sets {
		r.renderSet(maxlen, set)
	}
}

// renderSet renders a single host name with its qualified addresses.
func (r *renderer) renderSet(labelwidth int, set batch.NamedAddressSet) {
	fmt.Fprintf(r.w, "%-*s%-*s", r.Indentation, "", labelwidth,
		strings.TrimSuffix(set.Host, "."))
	for idx, addr := range set.Addresses {
		if idx > 0 {
			fmt.Fprint(r.w, " ")
		}
		switch addr.Quality {
		case types.Unverified:
			fmt.Fprintf(r.w, " ? %s", addr.Address)
		case types.Verifying:
			fmt.Fprint(r.w, verifyingAddressStyle.Styled(" "+r.spinner.Spinner()+addr.Address+" "))
		case types.Verified:
			fmt.Fprint(r.w, validAddressStyle.Styled(" ✔ "+addr.Address+" "))
		case types.Invalid:
			fmt.Fprint(r.w, invalidAddressStyle.Styled(" × "+addr.Address+" "))
		}
	}
	fmt.Fprintln(r.w)
}

// sortQualifiedAddresses sorts a slice of qualified addresses in place:
// IPv4 first, IPv6 ... (embarrassed silence) ... second, then by address
// value.
func sortQualifiedAddresses(addrs []types.QualifiedAddressValue) {
	sort.Slice(addrs, func(a, b int) bool {
		ipA, _ := netip.ParseAddr(addrs[a].Address)
		ipB, _ := netip.ParseAddr(addrs[b].Address)
		return ipA.Less(ipB)
	})
}

// sortNamedAddressSets sorts the sets in place lexicographically on their
// host names, with each set's addresses sorted in turn. Note: modifies the
// passed sets in place.
func sortNamedAddressSets(sets []batch.NamedAddressSet) {
	sort.Slice(sets, func(a, b int) bool {
		return sets[a].Host < sets[b].Host
	})
	for _, set := range sets {
		sortQualifiedAddresses(set.Addresses)
	}
}
