package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradesim/internal/domain"
)

// PositionRepository stores positions and their lifecycle status. Closed
// positions are never deleted; they remain as trade history.
//
// Positions are only mutated by a caller that already holds the owner's
// account row lock, so position writes need no locking of their own; the
// Tx variants keep both writes in the same transaction.
type PositionRepository struct {
	db *pgxpool.Pool
}

// NewPositionRepository creates a new PositionRepository.
func NewPositionRepository(db *pgxpool.Pool) *PositionRepository {
	return &PositionRepository{db: db}
}

const positionColumns = `id, user_id, symbol, side, entry_price, margin, leverage, liquidation_price,
	take_profit, stop_loss, status, pnl, open_time, close_price, close_time, closed_by`

const insertPositionQuery = `
	INSERT INTO positions (
		id, user_id, symbol, side, entry_price, margin, leverage, liquidation_price,
		take_profit, stop_loss, status, open_time
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// CreateTx inserts a new position inside the account-locking transaction.
func (r *PositionRepository) CreateTx(ctx context.Context, tx pgx.Tx, p *domain.Position) error {
	_, err := tx.Exec(ctx, insertPositionQuery,
		p.ID, p.UserID, p.Symbol, string(p.Side), p.EntryPrice, p.Margin, p.Leverage,
		p.LiquidationPrice, p.TakeProfit, p.StopLoss, string(p.Status), p.OpenTime,
	)
	if err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}
	return nil
}

// GetByID retrieves a position by ID.
func (r *PositionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE id = $1`
	return scanPosition(r.db.QueryRow(ctx, query, id))
}

// GetByIDTx re-reads a position inside the account-locking transaction.
// Callers use it to re-check status after acquiring the owner's lock, so
// a position can never be settled or cancelled twice.
func (r *PositionRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE id = $1`
	return scanPosition(tx.QueryRow(ctx, query, id))
}

// GetAllByStatus retrieves every position in the given status, across all
// users. The settlement engine scans PENDING and OPEN through this; CLOSED
// positions never come back into a scan.
func (r *PositionRepository) GetAllByStatus(ctx context.Context, status domain.Status) ([]*domain.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE status = $1 ORDER BY open_time ASC`
	return r.queryPositions(ctx, query, string(status))
}

// GetByUserAndStatus retrieves a user's positions in the given status.
func (r *PositionRepository) GetByUserAndStatus(ctx context.Context, userID int64, status domain.Status) ([]*domain.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE user_id = $1 AND status = $2 ORDER BY open_time DESC`
	return r.queryPositions(ctx, query, userID, string(status))
}

// UpdateTx overwrites the position's mutable fields inside the
// account-locking transaction. No partial-field updates: the caller
// re-saves the full entity after validation.
func (r *PositionRepository) UpdateTx(ctx context.Context, tx pgx.Tx, p *domain.Position) error {
	query := `
		UPDATE positions
		SET status = $1, pnl = $2, open_time = $3, close_price = $4, close_time = $5, closed_by = $6
		WHERE id = $7
	`

	var closedBy *string
	if p.ClosedBy != nil {
		s := string(*p.ClosedBy)
		closedBy = &s
	}

	_, err := tx.Exec(ctx, query,
		string(p.Status), p.PnL, p.OpenTime, p.ClosePrice, p.CloseTime, closedBy, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update position %s: %w", p.ID, err)
	}
	return nil
}

func (r *PositionRepository) queryPositions(ctx context.Context, query string, args ...any) ([]*domain.Position, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []*domain.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

func scanPosition(row pgx.Row) (*domain.Position, error) {
	p := &domain.Position{}
	var side, status string
	var closedBy *string

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Symbol,
		&side,
		&p.EntryPrice,
		&p.Margin,
		&p.Leverage,
		&p.LiquidationPrice,
		&p.TakeProfit,
		&p.StopLoss,
		&status,
		&p.PnL,
		&p.OpenTime,
		&p.ClosePrice,
		&p.CloseTime,
		&closedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPositionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan position: %w", err)
	}

	p.Side = domain.Side(side)
	p.Status = domain.Status(status)
	if closedBy != nil {
		reason := domain.CloseReason(*closedBy)
		p.ClosedBy = &reason
	}
	return p, nil
}
