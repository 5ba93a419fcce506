// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package fault

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("typed faults", func() {

	It("carries code and message, hiding the location from the error text", func() {
		f := New(StatusResolverFailure, "no such host")
		Expect(f).To(MatchError("no such host"))
		Expect(f.Code).To(Equal(StatusResolverFailure))
		file, line := f.Location()
		Expect(file).To(Equal("fault_test.go"))
		Expect(line).NotTo(BeZero())
	})

	It("formats messages", func() {
		f := Newf(StatusInternal, "worker %d misbehaved", 42)
		Expect(f).To(MatchError("worker 42 misbehaved"))
	})

	It("passes faults through normalization unchanged", func() {
		f := New(StatusResolverFailure, "servfail")
		Expect(Normalize(f)).To(BeIdenticalTo(f))
	})

	It("normalizes foreign errors into generic internal faults", func() {
		err := fmt.Errorf("wrapping: %w", errors.New("gone fishing"))
		f := Normalize(err)
		Expect(f.Code).To(Equal(StatusInternal))
		Expect(f).To(MatchError("wrapping: gone fishing"))
	})

	It("normalizes nil to nil", func() {
		Expect(Normalize(nil)).To(BeNil())
	})

	It("stringifies status codes", func() {
		Expect(StatusResolverFailure.String()).To(Equal("resolver-failure"))
		Expect(StatusInternal.String()).To(Equal("internal"))
		Expect(StatusCode(666).String()).To(Equal("StatusCode(666)"))
	})

})
