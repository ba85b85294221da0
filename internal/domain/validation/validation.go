// Package validation carries user-facing input errors from domain services
// to the transport layer.
package validation

import "errors"

// Error is an input problem the caller can fix. Message is shown verbatim.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// New returns a validation error with msg.
func New(msg string) error {
	return &Error{Message: msg}
}

// As extracts a validation error from err's chain.
func As(err error) (*Error, bool) {
	var v *Error
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
