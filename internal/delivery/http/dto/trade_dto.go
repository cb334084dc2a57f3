package dto

import (
	"github.com/shopspring/decimal"
)

// OpenTradeRequest is the payload for opening a position. A positive
// target_price turns the order into a pending limit order.
type OpenTradeRequest struct {
	UserID      int64            `json:"user_id"`
	Symbol      string           `json:"symbol"`
	Side        string           `json:"side"`
	Margin      decimal.Decimal  `json:"margin"`
	Leverage    int              `json:"leverage"`
	TakeProfit  *decimal.Decimal `json:"take_profit,omitempty"`
	StopLoss    *decimal.Decimal `json:"stop_loss,omitempty"`
	TargetPrice *decimal.Decimal `json:"target_price,omitempty"`
}
