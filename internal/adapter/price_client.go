// Package adapter contains clients for external collaborators.
package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradesim/internal/domain"
)

const maxQuoteBody = 4 << 10

// PriceClient fetches current prices from the external quote service.
// The service answers GET /api/crypto/price/{symbol} with a textual
// quote of the form "Price: <number> USD".
type PriceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewPriceClient creates a PriceClient against the given base URL.
func NewPriceClient(baseURL string) *PriceClient {
	return &PriceClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GetPrice returns the current price for a symbol. Transport errors,
// malformed responses and non-positive parsed values all classify as
// domain.ErrQuoteUnavailable; a zero price is never handed to callers.
func (c *PriceClient) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/api/crypto/price/%s", c.baseURL, strings.ToUpper(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: build request for %s: %v", domain.ErrQuoteUnavailable, symbol, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: fetch %s: %v", domain.ErrQuoteUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuoteBody))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: read quote for %s: %v", domain.ErrQuoteUnavailable, symbol, err)
	}

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: quote service returned status %d for %s", domain.ErrQuoteUnavailable, resp.StatusCode, symbol)
	}

	price, err := parseQuote(string(body))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", domain.ErrQuoteUnavailable, symbol, err)
	}

	return price, nil
}

// parseQuote extracts the decimal price token from a quote line such as
// "Price: 64250.50 USD".
func parseQuote(raw string) (decimal.Decimal, error) {
	_, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return decimal.Zero, fmt.Errorf("malformed quote %q", raw)
	}

	token := strings.TrimSpace(rest)
	token = strings.TrimSpace(strings.TrimSuffix(token, "USD"))

	price, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed price token %q", token)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("non-positive price %s", price)
	}

	return price, nil
}
