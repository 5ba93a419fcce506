// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package fault

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// StatusCode classifies a [Fault] so that callers can react to the kind of
// failure without parsing message texts.
type StatusCode int

// The fault status codes of the daemon subsystem.
const (
	StatusInternal        StatusCode = iota + 1 // normalized non-framework failure.
	StatusResolverFailure                       // the address resolution itself failed.
)

// String returns the clear-text representation of a StatusCode value.
func (c StatusCode) String() string {
	switch c {
	case StatusInternal:
		return "internal"
	case StatusResolverFailure:
		return "resolver-failure"
	}
	return fmt.Sprintf("StatusCode(%d)", int(c))
}

// Fault is the framework's typed error: a status code plus a human-readable
// message, together with the source location of the original failure site.
// The location is diagnostic information only and never part of the error
// text, so error texts stay stable for callers matching on them.
type Fault struct {
	Code    StatusCode
	Message string

	file string
	line int
}

var _ error = (*Fault)(nil)

// New returns a new fault with the specified status code and message,
// capturing the caller's source location.
func New(code StatusCode, message string) *Fault {
	return newFault(2, code, message)
}

// Newf works like [New], formatting the message in fmt.Sprintf style.
func Newf(code StatusCode, format string, args ...any) *Fault {
	return newFault(2, code, fmt.Sprintf(format, args...))
}

func newFault(skip int, code StatusCode, message string) *Fault {
	f := &Fault{Code: code, Message: message}
	if _, file, line, ok := runtime.Caller(skip); ok {
		f.file = filepath.Base(file)
		f.line = line
	}
	return f
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return f.Message
}

// Location returns the source file name and line of the original failure
// site, for diagnostic output.
func (f *Fault) Location() (file string, line int) {
	return f.file, f.line
}

// Normalize translates an arbitrary error into a fault suitable for storing
// in a promise. Faults pass through unchanged, keeping their specific status
// code and diagnostic payload; any other error is wrapped into a generic
// StatusInternal fault so that the promise's error channel has a uniform
// shape. Normalize(nil) is nil.
func Normalize(err error) *Fault {
	if err == nil {
		return nil
	}
	if f, ok := err.(*Fault); ok {
		return f
	}
	return newFault(2, StatusInternal, err.Error())
}
