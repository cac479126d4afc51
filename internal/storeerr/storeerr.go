// Package storeerr defines the domain error taxonomy shared by the
// catalog, order, coupon, and storage layers.
package storeerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeValidation covers bad input, including SKU conflicts reported
	// separately as CodeConflict.
	CodeValidation Code = "VALIDATION"

	// CodeConflict is returned when a save would violate SKU uniqueness.
	CodeConflict Code = "CONFLICT"

	// CodeNotFound is returned when an operation references an unknown
	// record and cannot proceed without it.
	CodeNotFound Code = "NOT_FOUND"

	// CodeInsufficientStock is returned when an order requests more
	// units than are available.
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"

	// CodePersistence covers storage read/write failures.
	CodePersistence Code = "PERSISTENCE"
)

// Error is the domain error type. Message names the failed precondition
// (which SKU conflicted, which item lacked stock) rather than a generic
// failure string.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the domain code from an error chain, or CodePersistence
// when the chain carries no domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodePersistence
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInsufficientStock:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
