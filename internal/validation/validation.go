// Package validation carries the sentinel shared by input validation
// failures so the API layer can map them to a client error instead of a
// server error.
package validation

import (
	"errors"
	"fmt"
)

// ErrInvalid matches every error built with Errorf.
var ErrInvalid = errors.New("invalid input")

type invalidError struct {
	msg string
}

func (e *invalidError) Error() string { return e.msg }

func (e *invalidError) Unwrap() error { return ErrInvalid }

// Errorf builds an input validation error. The message reads exactly like
// fmt.Errorf output while errors.Is(err, ErrInvalid) reports true.
func Errorf(format string, args ...interface{}) error {
	return &invalidError{msg: fmt.Sprintf(format, args...)}
}
