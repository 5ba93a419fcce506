// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package verify

import (
	"context"

	"github.com/netherd/netherd/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func namaddr(host, addr string, q types.Quality) *types.NamedAddressValue {
	return &types.NamedAddressValue{
		Host:                  host,
		QualifiedAddressValue: types.QualifiedAddressValue{Address: addr, Quality: q},
	}
}

var _ = Describe("address verdict cache", func() {

	var news chan types.NamedAddress
	var cache *AddrCache
	ctx := context.Background()

	BeforeEach(func() {
		news = make(chan types.NamedAddress, 16)
		cache = NewAddrCache()
	})

	It("flags first-seen addresses for verification", func() {
		Expect(cache.Update(ctx, namaddr("a.example", "192.0.2.1", types.Unverified), news)).To(BeTrue())
		Expect(news).To(Receive(HaveValue(Equal(
			*namaddr("a.example", "192.0.2.1", types.Unverified)))))
	})

	It("does not verify the same address twice for different names", func() {
		Expect(cache.Update(ctx, namaddr("a.example", "192.0.2.1", types.Unverified), news)).To(BeTrue())
		Expect(cache.Update(ctx, namaddr("b.example", "192.0.2.1", types.Unverified), news)).To(BeFalse())
	})

	It("fans a final verdict out to all registered names", func() {
		Expect(cache.Update(ctx, namaddr("a.example", "192.0.2.1", types.Verifying), news)).To(BeTrue())
		Expect(cache.Update(ctx, namaddr("b.example", "192.0.2.1", types.Verifying), news)).To(BeFalse())
		// the pinger reports its verdict for the address under the first
		// name...
		Expect(cache.Update(ctx, namaddr("a.example", "192.0.2.1", types.Verified), news)).To(BeFalse())

		var hosts []string
		for len(news) > 0 {
			na := <-news
			if na.Qual() == types.Verified {
				hosts = append(hosts, na.Name())
			}
		}
		Expect(hosts).To(ConsistOf("a.example", "b.example"))
	})

	It("serves late-coming names the cached final verdict", func() {
		Expect(cache.Update(ctx, namaddr("a.example", "192.0.2.1", types.Verifying), news)).To(BeTrue())
		Expect(cache.Update(ctx, namaddr("a.example", "192.0.2.1", types.Verified), news)).To(BeFalse())
		for len(news) > 0 { // drain
			<-news
		}
		Expect(cache.Update(ctx, namaddr("late.example", "192.0.2.1", types.Verifying), news)).To(BeFalse())
		Expect(news).To(Receive(HaveValue(Equal(
			*namaddr("late.example", "192.0.2.1", types.Verified)))))
	})

})
