package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceSource supplies current market prices for symbols. A failed fetch
// returns an error wrapping ErrQuoteUnavailable; implementations never
// report a zero or negative price as success.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}
