// Package errs defines the error kinds shared by every coordination
// operation and their HTTP status mapping.
package errs

import (
	"errors"
	"net/http"
)

var (
	// ErrAccessDenied indicates a failed permission check on a read.
	ErrAccessDenied = errors.New("access denied")
	// ErrUnauthorized indicates the caller lacks the required role for a mutation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidState indicates an operation against an appointment in a
	// state that does not permit it (canceled, or not yet confirmed).
	ErrInvalidState = errors.New("invalid state")
	// ErrPaymentRequired indicates scheduling with a non-positive fee.
	ErrPaymentRequired = errors.New("payment required")
	// ErrInsufficientFunds indicates a debit the account cannot cover.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)

// HTTPStatus maps an error to the status code handlers respond with.
// Unrecognized errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAccessDenied), errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrPaymentRequired), errors.Is(err, ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
