package dto

import (
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the payload for registering an account.
type CreateAccountRequest struct {
	Username string `json:"username"`
	Premium  bool   `json:"premium"`
}

// AdjustBalanceRequest is the payload for a balance adjustment.
type AdjustBalanceRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
