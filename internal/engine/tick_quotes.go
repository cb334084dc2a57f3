package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"tradesim/internal/domain"
)

// tickQuotes memoizes price lookups for the duration of one tick: each
// symbol is fetched at most once per scan, and a symbol's failure skips
// every position on that symbol for this tick only.
type tickQuotes struct {
	source domain.PriceSource
	seen   map[string]tickQuote
}

type tickQuote struct {
	price decimal.Decimal
	err   error
}

func newTickQuotes(source domain.PriceSource) *tickQuotes {
	return &tickQuotes{
		source: source,
		seen:   make(map[string]tickQuote),
	}
}

func (q *tickQuotes) get(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if quote, ok := q.seen[symbol]; ok {
		return quote.price, quote.err
	}

	price, err := q.source.GetPrice(ctx, symbol)
	q.seen[symbol] = tickQuote{price: price, err: err}
	return price, err
}
