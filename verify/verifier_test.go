// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package verify

import (
	"context"
	"time"

	"github.com/netherd/netherd/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("verifier", func() {

	It("passes bare name announcements straight through", NodeTimeout(10*time.Second), func(ctx context.Context) {
		v, news := New(1)
		in := make(chan types.NamedAddress, 1)
		go v.Verify(ctx, in)
		in <- &types.NamedAddressValue{Host: "bare.example"}
		Eventually(news).Should(Receive(
			HaveValue(HaveField("Host", "bare.example"))))
		close(in)
		Eventually(news).WithTimeout(5 * time.Second).Should(BeClosed())
	})

	It("verifies an address only once, fanning the verdict out to all names", NodeTimeout(30*time.Second), func(ctx context.Context) {
		v, news := New(1, WithCount(1), WithInterval(100*time.Millisecond))
		in := make(chan types.NamedAddress, 2)
		// An address that cannot even be parsed makes the verdict immediate
		// and deterministic, without any network involved.
		in <- namaddr("a.example", "299.299.299.299", types.Unverified)
		in <- namaddr("b.example", "299.299.299.299", types.Unverified)
		close(in)
		go v.Verify(ctx, in)

		finals := map[string]types.Quality{}
		for namaddr := range news {
			if namaddr.Qual().IsPending() {
				continue
			}
			finals[namaddr.Name()] = namaddr.Qual()
		}
		Expect(finals).To(And(
			HaveKeyWithValue("a.example", types.Invalid),
			HaveKeyWithValue("b.example", types.Invalid)))
	})

	It("winds down when the context gets cancelled", func() {
		v, news := New(1)
		in := make(chan types.NamedAddress)
		ctx, cancel := context.WithCancel(context.Background())
		go v.Verify(ctx, in)
		Consistently(news).WithTimeout(200 * time.Millisecond).ShouldNot(BeClosed())
		cancel()
		Eventually(news).WithTimeout(time.Second).Should(BeClosed())
	})

})
