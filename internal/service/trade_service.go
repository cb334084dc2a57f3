package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tradesim/internal/domain"
	"tradesim/internal/repository"
	"tradesim/internal/settlement"
)

// TradeService implements the user-facing trading operations: opening
// positions (market or limit), cancelling pending orders, manual closes
// and live listings. It shares the settlement rules and the account
// locking discipline with the settlement engine.
type TradeService struct {
	pool      *pgxpool.Pool
	accounts  *repository.AccountRepository
	positions *repository.PositionRepository
	prices    domain.PriceSource
}

// NewTradeService creates a new TradeService.
func NewTradeService(pool *pgxpool.Pool, accounts *repository.AccountRepository, positions *repository.PositionRepository, prices domain.PriceSource) *TradeService {
	return &TradeService{
		pool:      pool,
		accounts:  accounts,
		positions: positions,
		prices:    prices,
	}
}

// OpenOrderRequest carries the parameters for a new position. A positive
// TargetPrice makes it a limit order that stays PENDING until the market
// reaches the target; otherwise the position opens at market price.
type OpenOrderRequest struct {
	UserID      int64
	Symbol      string
	Side        domain.Side
	Margin      decimal.Decimal
	Leverage    int
	TakeProfit  *decimal.Decimal
	StopLoss    *decimal.Decimal
	TargetPrice *decimal.Decimal
}

// OpenPositionView is the live projection of an open position returned by
// ListOpen. Price, PnL and PnL% are computed at request time, not stored.
type OpenPositionView struct {
	ID           uuid.UUID       `json:"id"`
	Symbol       string          `json:"symbol"`
	Side         domain.Side     `json:"side"`
	EntryPrice   decimal.Decimal `json:"entry_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Margin       decimal.Decimal `json:"margin"`
	Leverage     int             `json:"leverage"`
	PnL          decimal.Decimal `json:"pnl"`
	PnLPercent   decimal.Decimal `json:"pnl_percent"`
}

// PendingOrderView is the projection of a pending limit order.
type PendingOrderView struct {
	ID          uuid.UUID       `json:"id"`
	Symbol      string          `json:"symbol"`
	Side        domain.Side     `json:"side"`
	TargetPrice decimal.Decimal `json:"target_price"`
	Margin      decimal.Decimal `json:"margin"`
	Leverage    int             `json:"leverage"`
}

// Open validates the request, reserves margin under the account lock and
// persists the new position. Validation happens before any mutation; a
// market order aborts entirely when the quote is unavailable.
func (s *TradeService) Open(ctx context.Context, req OpenOrderRequest) (*domain.Position, error) {
	if !req.Side.Valid() {
		return nil, domain.NewValidationError("side must be LONG or SHORT")
	}
	if strings.TrimSpace(req.Symbol) == "" {
		return nil, domain.NewValidationError("symbol is required")
	}
	if err := settlement.ValidateOrderParams(req.Margin, req.Leverage); err != nil {
		return nil, err
	}

	entry, status, err := s.resolveEntry(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := settlement.ValidateProtectiveLevels(req.Side, entry, req.TakeProfit, req.StopLoss); err != nil {
		return nil, err
	}

	tx, err := repository.BeginLocking(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := s.accounts.GetByIDForUpdate(ctx, tx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !account.Premium {
		return nil, domain.ErrPremiumRequired
	}
	if !account.CanAfford(req.Margin) {
		return nil, domain.ErrInsufficientFunds
	}

	account.ReserveMargin(req.Margin, status == domain.StatusPending)

	position := &domain.Position{
		ID:               uuid.New(),
		UserID:           req.UserID,
		Symbol:           strings.ToUpper(req.Symbol),
		Side:             req.Side,
		EntryPrice:       entry,
		Margin:           req.Margin,
		Leverage:         req.Leverage,
		LiquidationPrice: settlement.LiquidationPrice(entry, req.Leverage, req.Side),
		TakeProfit:       req.TakeProfit,
		StopLoss:         req.StopLoss,
		Status:           status,
		OpenTime:         time.Now().UTC(),
	}

	if err := s.accounts.UpdateBalancesTx(ctx, tx, account); err != nil {
		return nil, err
	}
	if err := s.positions.CreateTx(ctx, tx, position); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit open: %w", err)
	}

	log.Printf("[OK] Position created: %s %s %s @ %s (status=%s)",
		position.ID, position.Symbol, position.Side, position.EntryPrice, position.Status)
	return position, nil
}

// resolveEntry determines the execution price and initial status. The
// market price is fetched before the account transaction begins, so quote
// latency never extends row-lock hold time.
func (s *TradeService) resolveEntry(ctx context.Context, req OpenOrderRequest) (decimal.Decimal, domain.Status, error) {
	if req.TargetPrice != nil && req.TargetPrice.GreaterThan(decimal.Zero) {
		return *req.TargetPrice, domain.StatusPending, nil
	}

	price, err := s.prices.GetPrice(ctx, req.Symbol)
	if err != nil {
		return decimal.Zero, "", err
	}
	return price, domain.StatusOpen, nil
}

// ListOpen returns the user's open positions with live price and PnL.
// A quote failure fails the request rather than rendering zeros.
func (s *TradeService) ListOpen(ctx context.Context, userID int64) ([]OpenPositionView, error) {
	positions, err := s.positions.GetByUserAndStatus(ctx, userID, domain.StatusOpen)
	if err != nil {
		return nil, err
	}

	quotes := make(map[string]decimal.Decimal)
	views := make([]OpenPositionView, 0, len(positions))
	for _, p := range positions {
		price, ok := quotes[p.Symbol]
		if !ok {
			price, err = s.prices.GetPrice(ctx, p.Symbol)
			if err != nil {
				return nil, err
			}
			quotes[p.Symbol] = price
		}

		pnl := settlement.PnL(p.EntryPrice, price, p.Margin, p.Leverage, p.Side)
		views = append(views, OpenPositionView{
			ID:           p.ID,
			Symbol:       p.Symbol,
			Side:         p.Side,
			EntryPrice:   p.EntryPrice,
			CurrentPrice: price,
			Margin:       p.Margin,
			Leverage:     p.Leverage,
			PnL:          pnl,
			PnLPercent:   settlement.PnLPercent(pnl, p.Margin),
		})
	}

	return views, nil
}

// ListPending returns the user's pending limit orders.
func (s *TradeService) ListPending(ctx context.Context, userID int64) ([]PendingOrderView, error) {
	positions, err := s.positions.GetByUserAndStatus(ctx, userID, domain.StatusPending)
	if err != nil {
		return nil, err
	}

	views := make([]PendingOrderView, 0, len(positions))
	for _, p := range positions {
		views = append(views, PendingOrderView{
			ID:          p.ID,
			Symbol:      p.Symbol,
			Side:        p.Side,
			TargetPrice: p.EntryPrice,
			Margin:      p.Margin,
			Leverage:    p.Leverage,
		})
	}

	return views, nil
}

// Cancel cancels a pending limit order, releasing its frozen margin back
// to the available balance. Only PENDING orders can be cancelled.
func (s *TradeService) Cancel(ctx context.Context, positionID uuid.UUID) error {
	position, err := s.positions.GetByID(ctx, positionID)
	if err != nil {
		return err
	}
	if !position.CanCancel() {
		return fmt.Errorf("%w: only pending orders can be cancelled", domain.ErrInvalidState)
	}

	tx, err := repository.BeginLocking(ctx, s.pool)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := s.accounts.GetByIDForUpdate(ctx, tx, position.UserID)
	if err != nil {
		return err
	}

	// Re-check under the lock: the engine may have activated the order
	// between the first read and lock acquisition.
	position, err = s.positions.GetByIDTx(ctx, tx, positionID)
	if err != nil {
		return err
	}
	if !position.CanCancel() {
		return fmt.Errorf("%w: only pending orders can be cancelled", domain.ErrInvalidState)
	}

	account.ReleaseMargin(position.Margin)
	position.Finalize(nil, nil, nil, time.Now().UTC())

	if err := s.accounts.UpdateBalancesTx(ctx, tx, account); err != nil {
		return err
	}
	if err := s.positions.UpdateTx(ctx, tx, position); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cancel: %w", err)
	}

	log.Printf("[OK] Pending order cancelled: %s, margin %s restored", position.ID, position.Margin)
	return nil
}

// Close closes an open position at the current market price and credits
// the payout to the account. Only OPEN positions can be closed manually.
func (s *TradeService) Close(ctx context.Context, positionID uuid.UUID) error {
	position, err := s.positions.GetByID(ctx, positionID)
	if err != nil {
		return err
	}
	if !position.CanClose() {
		return fmt.Errorf("%w: only open positions can be closed", domain.ErrInvalidState)
	}

	// A failed quote aborts the close; the position stays OPEN.
	price, err := s.prices.GetPrice(ctx, position.Symbol)
	if err != nil {
		return err
	}

	tx, err := repository.BeginLocking(ctx, s.pool)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := s.accounts.GetByIDForUpdate(ctx, tx, position.UserID)
	if err != nil {
		return err
	}

	// Re-check under the lock so an engine settlement on the same tick
	// cannot pay out twice.
	position, err = s.positions.GetByIDTx(ctx, tx, positionID)
	if err != nil {
		return err
	}
	if !position.CanClose() {
		return fmt.Errorf("%w: only open positions can be closed", domain.ErrInvalidState)
	}

	pnl := settlement.PnL(position.EntryPrice, price, position.Margin, position.Leverage, position.Side)
	payout := settlement.Payout(position.Margin, pnl)

	account.CreditPayout(payout)
	reason := domain.ClosedByManual
	position.Finalize(&price, &pnl, &reason, time.Now().UTC())

	if err := s.accounts.UpdateBalancesTx(ctx, tx, account); err != nil {
		return err
	}
	if err := s.positions.UpdateTx(ctx, tx, position); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit close: %w", err)
	}

	log.Printf("[OK] Position closed manually: %s @ %s, pnl=%s payout=%s", position.ID, price, pnl, payout)
	return nil
}
