// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package types

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("address qualities", func() {

	It("stringifies", func() {
		Expect(Unverified.String()).To(Equal("unverified"))
		Expect(Verifying.String()).To(Equal("verifying"))
		Expect(Invalid.String()).To(Equal("invalid"))
		Expect(Verified.String()).To(Equal("verified"))
		Expect(Quality(42).String()).To(Equal("Quality(42)"))
	})

	It("knows which qualities are final", func() {
		Expect(Unverified.IsPending()).To(BeTrue())
		Expect(Verifying.IsPending()).To(BeTrue())
		Expect(Verified.IsPending()).To(BeFalse())
		Expect(Invalid.IsPending()).To(BeFalse())
	})

	It("updates qualified addresses copy-on-write", func() {
		qa := &QualifiedAddressValue{Address: "192.0.2.1"}
		boom := errors.New("unreachable")
		updated := qa.WithQuality(Invalid, boom)
		Expect(updated.Qual()).To(Equal(Invalid))
		Expect(updated.Err()).To(MatchError(boom))
		Expect(qa.Quality).To(Equal(Unverified), "original must stay untouched")
	})

	It("keeps the name when updating named addresses", func() {
		na := &NamedAddressValue{
			Host:                  "svc.example.org",
			QualifiedAddressValue: QualifiedAddressValue{Address: "192.0.2.1"},
		}
		updated := na.WithQuality(Verified, nil)
		named, ok := updated.(NamedAddress)
		Expect(ok).To(BeTrue(), "quality update must preserve the named address type")
		Expect(named.Name()).To(Equal("svc.example.org"))
		Expect(named.Qual()).To(Equal(Verified))
	})

})
