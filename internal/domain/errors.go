package domain

import "errors"

// Sentinel errors for the failure kinds the trade API surfaces. Callers
// classify with errors.Is; the delivery layer maps them to status codes.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrPositionNotFound  = errors.New("position not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidState      = errors.New("position is not in a valid state for this operation")
	ErrQuoteUnavailable  = errors.New("price quote unavailable")
	ErrPremiumRequired   = errors.New("premium subscription required")
)

// ValidationError reports a rejected request parameter (bad leverage,
// margin below minimum, TP/SL on the wrong side of entry, ...).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a ValidationError with the given reason.
func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
