// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package promise

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
)

var _ = Describe("promises", func() {

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(2 * time.Second).WithPolling(100 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
		})
	})

	It("starts out pending", func() {
		p := New()
		Expect(p.State()).To(Equal(Pending))
		Expect(p.IsSettled()).To(BeFalse())
		Expect(p.IsSuccess()).To(BeFalse())
		Expect(p.Err()).NotTo(HaveOccurred())
	})

	It("settles successfully exactly once", func() {
		p := New()
		p.SetSuccess()
		Expect(p.IsSettled()).To(BeTrue())
		Expect(p.IsSuccess()).To(BeTrue())
		Expect(p.Err()).NotTo(HaveOccurred())
		Expect(p.SetSuccess).To(PanicWith(ContainSubstring("already succeeded")))
		Expect(func() { p.SetFailure(errors.New("too late")) }).To(Panic())
	})

	It("settles with an error exactly once", func() {
		p := New()
		boom := errors.New("lookup went south")
		p.SetFailure(boom)
		Expect(p.IsSettled()).To(BeTrue())
		Expect(p.IsSuccess()).To(BeFalse())
		Expect(p.Err()).To(MatchError(boom))
		Expect(p.SetSuccess).To(PanicWith(ContainSubstring("already failed")))
	})

	It("wakes a blocked waiter upon settlement", func() {
		p := New()
		waited := make(chan error, 1)
		go func() {
			waited <- p.Wait(context.Background())
		}()
		Consistently(waited).WithTimeout(100 * time.Millisecond).ShouldNot(Receive())
		p.SetSuccess()
		Eventually(waited).WithTimeout(time.Second).Should(Receive(BeNil()))
	})

	It("wakes all waiters, not just one", func() {
		p := New()
		const waiters = 4
		woken := make(chan struct{}, waiters)
		for i := 0; i < waiters; i++ {
			go func() {
				_ = p.Wait(context.Background())
				woken <- struct{}{}
			}()
		}
		p.SetFailure(errors.New("bad luck for everyone"))
		Eventually(woken).WithTimeout(time.Second).Should(HaveLen(waiters))
	})

	It("aborts waiting when the context gets cancelled", func() {
		p := New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(p.Wait(ctx)).To(MatchError(context.Canceled))
		Expect(p.IsSettled()).To(BeFalse(), "cancelled wait must not settle the promise")
	})

	It("gives up waiting after the specified timeout", func() {
		p := New()
		Expect(p.WaitTimeout(50 * time.Millisecond)).To(BeFalse())
		p.SetSuccess()
		Expect(p.WaitTimeout(time.Second)).To(BeTrue())
	})

	It("signals settlement through its channel", func() {
		p := New()
		Expect(p.Settled()).NotTo(BeClosed())
		p.SetSuccess()
		Expect(p.Settled()).To(BeClosed())
	})

	It("remembers abandonment", func() {
		p := New()
		Expect(p.Abandoned()).To(BeFalse())
		p.Forget()
		Expect(p.Abandoned()).To(BeTrue())
		Expect(p.IsSettled()).To(BeFalse(), "abandonment must not settle the promise")
	})

})
