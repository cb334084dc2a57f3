package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a user's virtual capital. AvailableBalance is usable for
// new margin and payouts; FrozenBalance is capital reserved against
// pending limit orders. Neither balance may ever go negative.
type Account struct {
	ID               int64           `json:"id"`
	Username         string          `json:"username"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	FrozenBalance    decimal.Decimal `json:"frozen_balance"`
	Premium          bool            `json:"premium"`
	Rank             Rank            `json:"rank"`
	SubscriptionEnd  *time.Time      `json:"subscription_end,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Rank is the user's leaderboard tier.
type Rank string

const (
	RankRookie Rank = "ROOKIE"
	RankTrader Rank = "TRADER"
	RankElite  Rank = "ELITE"
)

// PremiumStartingBalance is credited to premium accounts on creation and
// on a contest balance reset.
var PremiumStartingBalance = decimal.NewFromInt(10_000)

// CanAfford reports whether the available balance covers the given margin.
func (a *Account) CanAfford(margin decimal.Decimal) bool {
	return a.AvailableBalance.GreaterThanOrEqual(margin)
}

// ReserveMargin debits the margin from the available balance. For pending
// limit orders the margin is parked in the frozen balance until the order
// activates.
func (a *Account) ReserveMargin(margin decimal.Decimal, pending bool) {
	a.AvailableBalance = a.AvailableBalance.Sub(margin)
	if pending {
		a.FrozenBalance = a.FrozenBalance.Add(margin)
	}
}

// ReleaseMargin returns a pending order's margin from frozen back to
// available (order cancelled).
func (a *Account) ReleaseMargin(margin decimal.Decimal) {
	a.FrozenBalance = a.FrozenBalance.Sub(margin)
	a.AvailableBalance = a.AvailableBalance.Add(margin)
}

// CommitMargin moves a pending order's margin out of frozen when the
// order activates; the margin is now committed to the open position.
func (a *Account) CommitMargin(margin decimal.Decimal) {
	a.FrozenBalance = a.FrozenBalance.Sub(margin)
}

// CreditPayout credits a close payout to the available balance.
func (a *Account) CreditPayout(payout decimal.Decimal) {
	a.AvailableBalance = a.AvailableBalance.Add(payout)
}
