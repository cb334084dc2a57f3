package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Position represents a single leveraged long/short exposure against a
// user's virtual balance.
type Position struct {
	ID               uuid.UUID        `json:"id"`
	UserID           int64            `json:"user_id"`
	Symbol           string           `json:"symbol"`
	Side             Side             `json:"side"`
	EntryPrice       decimal.Decimal  `json:"entry_price"`
	Margin           decimal.Decimal  `json:"margin"`
	Leverage         int              `json:"leverage"`
	LiquidationPrice decimal.Decimal  `json:"liquidation_price"`
	TakeProfit       *decimal.Decimal `json:"take_profit,omitempty"`
	StopLoss         *decimal.Decimal `json:"stop_loss,omitempty"`
	Status           Status           `json:"status"`
	PnL              *decimal.Decimal `json:"pnl,omitempty"`
	OpenTime         time.Time        `json:"open_time"`
	ClosePrice       *decimal.Decimal `json:"close_price,omitempty"`
	CloseTime        *time.Time       `json:"close_time,omitempty"`
	ClosedBy         *CloseReason     `json:"closed_by,omitempty"`
}

// Side of a position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Valid reports whether the side is one of the two known variants.
func (s Side) Valid() bool {
	return s == SideLong || s == SideShort
}

// Status of a position. A position moves PENDING -> OPEN -> CLOSED and
// never re-enters a prior state. Limit orders start PENDING, market
// orders start OPEN. CLOSED is terminal.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusOpen    Status = "OPEN"
	StatusClosed  Status = "CLOSED"
)

// CloseReason records how a position left the OPEN state.
type CloseReason string

const (
	ClosedByLiquidation CloseReason = "LIQUIDATED"
	ClosedByStopLoss    CloseReason = "STOP_LOSS"
	ClosedByTakeProfit  CloseReason = "TAKE_PROFIT"
	ClosedByManual      CloseReason = "MANUAL"
)

// IsLong checks if the position is a LONG position.
func (p *Position) IsLong() bool {
	return p.Side == SideLong
}

// CanCancel reports whether the position is still a pending limit order.
// Only pending orders may be cancelled.
func (p *Position) CanCancel() bool {
	return p.Status == StatusPending
}

// CanClose reports whether the position is an active exposure that can be
// closed (manually or by the settlement engine).
func (p *Position) CanClose() bool {
	return p.Status == StatusOpen
}

// Finalize moves the position into its terminal CLOSED state. Cancelled
// pending orders carry no close price or PnL.
func (p *Position) Finalize(closePrice, pnl *decimal.Decimal, reason *CloseReason, closedAt time.Time) {
	p.Status = StatusClosed
	p.ClosePrice = closePrice
	p.PnL = pnl
	p.ClosedBy = reason
	p.CloseTime = &closedAt
}
