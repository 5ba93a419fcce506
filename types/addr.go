// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package types

// QualifiedAddress is a network address together with its verification
// [Quality]. Qualified addresses travel through channels between pipeline
// stages, so the interface deliberately offers getters only; updates always
// produce a new value through WithQuality.
type QualifiedAddress interface {
	Addr() string                                  // the IP address in textual form.
	Qual() Quality                                 // the verification quality.
	Err() error                                    // optional error details when the quality is Invalid.
	Value() QualifiedAddressValue                  // returns a copy of the underlying value.
	WithQuality(q Quality, err error) QualifiedAddress // returns an updated copy.
}

// NamedAddress is a [QualifiedAddress] that additionally carries the host
// name the address was resolved from.
type NamedAddress interface {
	QualifiedAddress
	Name() string             // the host name.
	Named() NamedAddressValue // returns a copy of the underlying value.
}

// QualifiedAddressValue is the concrete value representation of a
// [QualifiedAddress].
type QualifiedAddressValue struct {
	Address string  `json:"address"` // a single IP (v4/v6) address.
	Quality Quality `json:"quality"` // verification state.
	err     error   // optional error details for invalid addresses.
}

var _ QualifiedAddress = (*QualifiedAddressValue)(nil)

// Addr returns the address.
func (qa *QualifiedAddressValue) Addr() string { return qa.Address }

// Qual returns the verification quality.
func (qa *QualifiedAddressValue) Qual() Quality { return qa.Quality }

// Err returns the optional error recorded while verifying this address.
func (qa *QualifiedAddressValue) Err() error { return qa.err }

// Value returns a copy of the qualified address information.
func (qa *QualifiedAddressValue) Value() QualifiedAddressValue { return *qa }

// WithQuality returns a copy of this address with updated quality
// information.
func (qa *QualifiedAddressValue) WithQuality(q Quality, err error) QualifiedAddress {
	return &QualifiedAddressValue{
		Address: qa.Address,
		Quality: q,
		err:     err,
	}
}

// NamedAddressValue is the concrete value representation of a
// [NamedAddress]: a host name plus one associated resolved address.
type NamedAddressValue struct {
	Host                  string `json:"host"` // the host name.
	QualifiedAddressValue        // a single associated resolved address.
}

var _ NamedAddress = (*NamedAddressValue)(nil)

// Name returns the host name.
func (na *NamedAddressValue) Name() string { return na.Host }

// Named returns a copy of the named address information.
func (na *NamedAddressValue) Named() NamedAddressValue { return *na }

// WithQuality returns a copy of this named address with updated quality
// information. Types embedding NamedAddressValue must reimplement WithQuality
// or quality updates will silently strip their additional information.
func (na *NamedAddressValue) WithQuality(q Quality, err error) QualifiedAddress {
	qa := na.Value()
	qa.Quality = q
	qa.err = err
	return &NamedAddressValue{
		Host:                  na.Host,
		QualifiedAddressValue: qa,
	}
}
