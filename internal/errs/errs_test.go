package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrAccessDenied, http.StatusForbidden},
		{ErrUnauthorized, http.StatusForbidden},
		{ErrInvalidState, http.StatusConflict},
		{ErrPaymentRequired, http.StatusPaymentRequired},
		{ErrInsufficientFunds, http.StatusPaymentRequired},
		{ErrNotFound, http.StatusNotFound},
		{errors.New("something else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHTTPStatusUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("appointment 3: %w", ErrInvalidState)
	if got := HTTPStatus(wrapped); got != http.StatusConflict {
		t.Errorf("HTTPStatus(wrapped) = %d, want 409", got)
	}
}
