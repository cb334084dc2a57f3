// Package settlement holds the pure pricing rules shared by the trade
// service and the settlement engine: liquidation price, PnL, payout, and
// the trigger tests that drive position state transitions. Nothing here
// touches storage or the network.
package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tradesim/internal/domain"
)

const (
	// pnlPrecision is the fractional precision used for relative-move
	// division, matching the 8-digit half-up arithmetic of the ledger.
	pnlPrecision = 8

	// liquidationScale is the storage scale of liquidation prices.
	liquidationScale = 4

	// MinLeverage and MaxLeverage bound the accepted leverage range.
	MinLeverage = 2
	MaxLeverage = 50
)

var (
	// maintenanceMarginRate keeps liquidation slightly ahead of total
	// margin exhaustion.
	maintenanceMarginRate = decimal.RequireFromString("0.005")

	// MinMargin is the smallest accepted margin per position.
	MinMargin = decimal.NewFromInt(10)

	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// LiquidationPrice derives the adverse price at which the position's
// losses consume its margin. For LONG: entry * (1 - 1/leverage + mm);
// for SHORT: entry * (1 + 1/leverage - mm). Rounded to 4 places.
func LiquidationPrice(entry decimal.Decimal, leverage int, side domain.Side) decimal.Decimal {
	factor := one.DivRound(decimal.NewFromInt(int64(leverage)), pnlPrecision)
	if side == domain.SideLong {
		return entry.Mul(one.Sub(factor).Add(maintenanceMarginRate)).Round(liquidationScale)
	}
	return entry.Mul(one.Add(factor).Sub(maintenanceMarginRate)).Round(liquidationScale)
}

// PnL computes realized profit or loss for an exit at the given price:
// relative move (8-digit precision) times margin times leverage.
func PnL(entry, exit, margin decimal.Decimal, leverage int, side domain.Side) decimal.Decimal {
	var diff decimal.Decimal
	if side == domain.SideLong {
		diff = exit.Sub(entry)
	} else {
		diff = entry.Sub(exit)
	}
	return diff.DivRound(entry, pnlPrecision).
		Mul(margin).
		Mul(decimal.NewFromInt(int64(leverage)))
}

// Payout is the amount returned to the account on close. A loss beyond
// margin is capped at total loss of margin; the payout is never negative.
func Payout(margin, pnl decimal.Decimal) decimal.Decimal {
	return decimal.Max(margin.Add(pnl), decimal.Zero)
}

// PnLPercent expresses PnL as a percentage of margin, rounded to 4 places.
func PnLPercent(pnl, margin decimal.Decimal) decimal.Decimal {
	return pnl.DivRound(margin, liquidationScale).Mul(hundred)
}

// TargetHit reports whether a pending limit order's target price has been
// reached: LONG fills at or below target, SHORT at or above.
func TargetHit(side domain.Side, target, price decimal.Decimal) bool {
	if side == domain.SideLong {
		return price.LessThanOrEqual(target)
	}
	return price.GreaterThanOrEqual(target)
}

// TakeProfitHit reports whether the optional take-profit level is hit.
// An absent level never triggers.
func TakeProfitHit(side domain.Side, tp *decimal.Decimal, price decimal.Decimal) bool {
	if tp == nil {
		return false
	}
	if side == domain.SideLong {
		return price.GreaterThanOrEqual(*tp)
	}
	return price.LessThanOrEqual(*tp)
}

// StopLossHit reports whether the optional stop-loss level is hit.
// An absent level never triggers.
func StopLossHit(side domain.Side, sl *decimal.Decimal, price decimal.Decimal) bool {
	if sl == nil {
		return false
	}
	if side == domain.SideLong {
		return price.LessThanOrEqual(*sl)
	}
	return price.GreaterThanOrEqual(*sl)
}

// LiquidationHit reports whether the price has crossed the liquidation
// level. Liquidation is always defined and always checked first.
func LiquidationHit(side domain.Side, liquidation, price decimal.Decimal) bool {
	if side == domain.SideLong {
		return price.LessThanOrEqual(liquidation)
	}
	return price.GreaterThanOrEqual(liquidation)
}

// CloseTrigger evaluates an open position against the current price and
// returns the reason it must close, if any. When several levels are
// crossed on the same tick the most severe wins:
// liquidation > stop-loss > take-profit.
func CloseTrigger(p *domain.Position, price decimal.Decimal) (domain.CloseReason, bool) {
	switch {
	case LiquidationHit(p.Side, p.LiquidationPrice, price):
		return domain.ClosedByLiquidation, true
	case StopLossHit(p.Side, p.StopLoss, price):
		return domain.ClosedByStopLoss, true
	case TakeProfitHit(p.Side, p.TakeProfit, price):
		return domain.ClosedByTakeProfit, true
	}
	return "", false
}

// ValidateOrderParams checks leverage and margin bounds for a new order.
func ValidateOrderParams(margin decimal.Decimal, leverage int) error {
	if leverage < MinLeverage || leverage > MaxLeverage {
		return domain.NewValidationError(fmt.Sprintf("leverage must be between %dx and %dx", MinLeverage, MaxLeverage))
	}
	if margin.LessThan(MinMargin) {
		return domain.NewValidationError(fmt.Sprintf("minimum margin is %s", MinMargin))
	}
	return nil
}

// ValidateProtectiveLevels checks that take-profit sits on the favorable
// side of entry and stop-loss on the adverse side.
func ValidateProtectiveLevels(side domain.Side, entry decimal.Decimal, tp, sl *decimal.Decimal) error {
	if side == domain.SideLong {
		if tp != nil && tp.LessThanOrEqual(entry) {
			return domain.NewValidationError("take profit must be above entry price")
		}
		if sl != nil && sl.GreaterThanOrEqual(entry) {
			return domain.NewValidationError("stop loss must be below entry price")
		}
		return nil
	}
	if tp != nil && tp.GreaterThanOrEqual(entry) {
		return domain.NewValidationError("take profit must be below entry price")
	}
	if sl != nil && sl.LessThanOrEqual(entry) {
		return domain.NewValidationError("stop loss must be above entry price")
	}
	return nil
}
