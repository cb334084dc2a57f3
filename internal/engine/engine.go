// Package engine contains the settlement engine: the recurring scan that
// activates pending limit orders and liquidates, stops out or
// takes profit on open positions.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tradesim/internal/domain"
	"tradesim/internal/repository"
	"tradesim/internal/settlement"
)

// Engine reconciles every non-terminal position against the latest price
// once per tick. Each position settles in its own transaction under the
// owner's account lock; one position's failure never aborts the scan.
type Engine struct {
	pool      *pgxpool.Pool
	accounts  *repository.AccountRepository
	positions *repository.PositionRepository
	prices    domain.PriceSource

	// mu serializes ticks: a tick arriving while one is in flight is
	// skipped, never queued, so no position is double-processed.
	mu sync.Mutex
}

// New creates a settlement engine.
func New(pool *pgxpool.Pool, accounts *repository.AccountRepository, positions *repository.PositionRepository, prices domain.PriceSource) *Engine {
	return &Engine{
		pool:      pool,
		accounts:  accounts,
		positions: positions,
		prices:    prices,
	}
}

// RunTick executes one scan-and-settle cycle: the full pending set, then
// the full open set. Returns false when a previous tick is still running
// and this one was skipped.
func (e *Engine) RunTick(ctx context.Context) bool {
	if !e.mu.TryLock() {
		log.Println("WARNING: settlement tick skipped, previous tick still running")
		return false
	}
	defer e.mu.Unlock()

	quotes := newTickQuotes(e.prices)
	e.processPendingOrders(ctx, quotes)
	e.processOpenPositions(ctx, quotes)
	return true
}

// processPendingOrders activates every pending limit order whose target
// price has been reached.
func (e *Engine) processPendingOrders(ctx context.Context, quotes *tickQuotes) {
	pending, err := e.positions.GetAllByStatus(ctx, domain.StatusPending)
	if err != nil {
		log.Printf("ERROR: failed to load pending orders: %v", err)
		return
	}

	for _, p := range pending {
		price, err := quotes.get(ctx, p.Symbol)
		if err != nil {
			log.Printf("WARNING: skipping pending order %s this tick: %v", p.ID, err)
			continue
		}
		if !settlement.TargetHit(p.Side, p.EntryPrice, price) {
			continue
		}
		if err := e.activateOrder(ctx, p); err != nil {
			log.Printf("ERROR: failed to activate pending order %s: %v", p.ID, err)
		}
	}
}

// processOpenPositions closes every open position whose liquidation,
// stop-loss or take-profit level has been crossed, in that precedence.
func (e *Engine) processOpenPositions(ctx context.Context, quotes *tickQuotes) {
	open, err := e.positions.GetAllByStatus(ctx, domain.StatusOpen)
	if err != nil {
		log.Printf("ERROR: failed to load open positions: %v", err)
		return
	}

	for _, p := range open {
		price, err := quotes.get(ctx, p.Symbol)
		if err != nil {
			log.Printf("WARNING: skipping position %s this tick: %v", p.ID, err)
			continue
		}
		reason, hit := settlement.CloseTrigger(p, price)
		if !hit {
			continue
		}
		if err := e.settlePosition(ctx, p, price, reason); err != nil {
			log.Printf("ERROR: failed to settle position %s (%s): %v", p.ID, reason, err)
		}
	}
}

// activateOrder moves a pending order to OPEN: under the owner's account
// lock, its margin leaves the frozen balance and is committed to the
// position.
func (e *Engine) activateOrder(ctx context.Context, p *domain.Position) error {
	tx, err := repository.BeginLocking(ctx, e.pool)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := e.accounts.GetByIDForUpdate(ctx, tx, p.UserID)
	if err != nil {
		return err
	}

	// Re-check under the lock: the user may have cancelled between the
	// scan read and lock acquisition.
	p, err = e.positions.GetByIDTx(ctx, tx, p.ID)
	if err != nil {
		return err
	}
	if p.Status != domain.StatusPending {
		return nil
	}

	account.CommitMargin(p.Margin)
	p.Status = domain.StatusOpen
	p.OpenTime = time.Now().UTC()

	if err := e.accounts.UpdateBalancesTx(ctx, tx, account); err != nil {
		return err
	}
	if err := e.positions.UpdateTx(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit activation: %w", err)
	}

	log.Printf("[OK] Limit order activated: %s %s %s @ %s", p.ID, p.Symbol, p.Side, p.EntryPrice)
	return nil
}

// settlePosition finalizes an open position at the trigger price: under
// the owner's account lock it computes PnL, credits the payout and moves
// the position to CLOSED with the close reason.
func (e *Engine) settlePosition(ctx context.Context, p *domain.Position, price decimal.Decimal, reason domain.CloseReason) error {
	tx, err := repository.BeginLocking(ctx, e.pool)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := e.accounts.GetByIDForUpdate(ctx, tx, p.UserID)
	if err != nil {
		return err
	}

	// Re-check under the lock: a manual close may have won the race.
	p, err = e.positions.GetByIDTx(ctx, tx, p.ID)
	if err != nil {
		return err
	}
	if !p.CanClose() {
		return nil
	}

	pnl := settlement.PnL(p.EntryPrice, price, p.Margin, p.Leverage, p.Side)
	payout := settlement.Payout(p.Margin, pnl)

	account.CreditPayout(payout)
	p.Finalize(&price, &pnl, &reason, time.Now().UTC())

	if err := e.accounts.UpdateBalancesTx(ctx, tx, account); err != nil {
		return err
	}
	if err := e.positions.UpdateTx(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit settlement: %w", err)
	}

	log.Printf("[OK] Position closed (%s): %s %s | entry=%s exit=%s pnl=%s payout=%s",
		reason, p.ID, p.Symbol, p.EntryPrice, price, pnl, payout)
	return nil
}
