// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package dnsd

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"time"

	"github.com/netherd/netherd/fault"
	"github.com/netherd/netherd/promise"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
)

// staticResolver serves lookups from a fixed table, failing everything else
// with a DNS-ish "no such host" error.
type staticResolver struct {
	table map[string][]netip.Addr
}

func (r *staticResolver) LookupHost(_ context.Context, host string) ([]netip.Addr, error) {
	if addrs, ok := r.table[host]; ok {
		return addrs, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}

var _ = Describe("DNS daemon", func() {

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(3 * time.Second).WithPolling(250 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
		})
	})

	It("resolves an IPv4 literal through the queue", func() {
		d := New()
		d.Start()
		defer d.Stop()

		var slot netip.AddrPort
		p := d.EnqueueForLookup(&slot, "127.0.0.1", 8080)
		Expect(p.WaitTimeout(2 * time.Second)).To(BeTrue())
		Expect(p.IsSuccess()).To(BeTrue())
		Expect(slot).To(Equal(netip.MustParseAddrPort("127.0.0.1:8080")))
	})

	It("strips brackets off IPv6 literals", func() {
		d := New()
		d.Start()
		defer d.Stop()

		var slot netip.AddrPort
		p := d.EnqueueForLookup(&slot, "[::1]", 443)
		Expect(p.WaitTimeout(2 * time.Second)).To(BeTrue())
		Expect(p.IsSuccess()).To(BeTrue())
		Expect(slot.Addr()).To(Equal(netip.MustParseAddr("::1")))
		Expect(slot.Port()).To(Equal(uint16(443)))
	})

	It("resolves names through the configured backend", func() {
		d := New(WithResolver(&staticResolver{table: map[string][]netip.Addr{
			"db.internal.example": {netip.MustParseAddr("192.0.2.5"), netip.MustParseAddr("2001:db8::5")},
		}}))
		d.Start()
		defer d.Stop()

		var slot netip.AddrPort
		p := d.EnqueueForLookup(&slot, "db.internal.example", 5432)
		Expect(p.WaitTimeout(2 * time.Second)).To(BeTrue())
		Expect(p.IsSuccess()).To(BeTrue())
		// first result wins.
		Expect(slot).To(Equal(netip.MustParseAddrPort("192.0.2.5:5432")))
	})

	It("settles the promise with a resolver fault on lookup failure", func() {
		d := New(WithResolver(&staticResolver{}))
		d.Start()
		defer d.Stop()

		var slot netip.AddrPort
		p := d.EnqueueForLookup(&slot, "this.invalid.nonexistent.example", 80)
		Expect(p.WaitTimeout(2 * time.Second)).To(BeTrue())
		Expect(p.IsSuccess()).To(BeFalse())
		var f *fault.Fault
		Expect(errors.As(p.Err(), &f)).To(BeTrue())
		Expect(f.Code).To(Equal(fault.StatusResolverFailure))
		Expect(f.Message).To(ContainSubstring("no such host"))
		Expect(slot).To(BeZero(), "the slot must stay untouched on failure")
	})

	It("skips abandoned lookups without settling their promises", func() {
		d := New()

		var slot netip.AddrPort
		p := d.EnqueueForLookup(&slot, "127.0.0.1", 80)
		p.Forget()
		d.Start()
		defer d.Stop()

		follower := netip.AddrPort{}
		pf := d.EnqueueForLookup(&follower, "127.0.0.1", 81)
		Expect(pf.WaitTimeout(2 * time.Second)).To(BeTrue())
		Expect(p.IsSettled()).To(BeFalse(), "abandoned lookup must never settle")
		Expect(slot).To(BeZero())
	})

	It("executes queued lookups in submission order", func() {
		d := New()
		d.Start()
		defer d.Stop()

		slots := make([]netip.AddrPort, 5)
		var lastPromise *promise.Promise
		for i := range slots {
			lastPromise = d.EnqueueForLookup(&slots[i], "127.0.0.1", uint16(9000+i))
		}
		// FIFO: once the last promise settled, all earlier ones are settled
		// and their slots populated.
		Expect(lastPromise.WaitTimeout(2 * time.Second)).To(BeTrue())
		for i, slot := range slots {
			Expect(slot.Port()).To(Equal(uint16(9000+i)))
		}
	})

	It("looks up synchronously, bypassing the daemon", func() {
		d := New(WithResolver(&staticResolver{table: map[string][]netip.Addr{
			"cache.internal.example": {netip.MustParseAddr("192.0.2.7")},
		}}))

		addrport, err := d.LookUp(context.Background(), "cache.internal.example", 6379)
		Expect(err).NotTo(HaveOccurred())
		Expect(addrport).To(Equal(netip.MustParseAddrPort("192.0.2.7:6379")))

		_, err = d.LookUp(context.Background(), "unknown.internal.example", 80)
		var f *fault.Fault
		Expect(errors.As(err, &f)).To(BeTrue())
		Expect(f.Code).To(Equal(fault.StatusResolverFailure))
	})

	It("keeps settled promises readable after shutdown", func() {
		d := New()
		d.Start()

		var slot netip.AddrPort
		p := d.EnqueueForLookup(&slot, "127.0.0.1", 8080)
		Expect(p.WaitTimeout(2 * time.Second)).To(BeTrue())
		d.Stop()
		Expect(p.IsSuccess()).To(BeTrue())
		Expect(slot).To(Equal(netip.MustParseAddrPort("127.0.0.1:8080")))
	})

})
