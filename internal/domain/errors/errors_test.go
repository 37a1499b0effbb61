package errors

import (
	"errors"
	"testing"
)

func TestRateLimitErrorUnwrap(t *testing.T) {
	err := &RateLimitError{Window: WindowMinute, Limit: 30}
	if !errors.Is(err, ErrRateLimited) {
		t.Error("RateLimitError should unwrap to ErrRateLimited")
	}
}

func TestInsufficientFundsErrorUnwrap(t *testing.T) {
	err := &InsufficientFundsError{Scope: "org", Needed: 5, Balance: 2}
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Error("InsufficientFundsError should unwrap to ErrInsufficientFunds")
	}
}
