package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a message id does not exist in the local store.
var ErrNotFound = errors.New("message not found")

// ValidationError rejects bad input before any I/O is performed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError

	return errors.As(err, &ve)
}
