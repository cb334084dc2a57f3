package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tradesim/internal/domain"
)

// AccountRepository stores user accounts and their virtual balances.
//
// Balance mutations must go through the exclusive-access pair
// GetByIDForUpdate + UpdateBalancesTx inside one transaction, so that
// concurrent mutators of the same account serialize on the row lock.
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, username, available_balance, frozen_balance, premium, rank, subscription_end, created_at`

// Create inserts a new account and fills in its generated ID.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (username, available_balance, frozen_balance, premium, rank, subscription_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		account.Username,
		account.AvailableBalance,
		account.FrozenBalance,
		account.Premium,
		string(account.Rank),
		account.SubscriptionEnd,
		account.CreatedAt,
	).Scan(&account.ID)

	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID without locking it.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an account under an exclusive row lock held
// until the enclosing transaction commits or rolls back. Every balance
// mutation must read the account through this method.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return scanAccount(tx.QueryRow(ctx, query, id))
}

// UpdateBalancesTx writes the account's mutable fields inside the locking
// transaction.
func (r *AccountRepository) UpdateBalancesTx(ctx context.Context, tx pgx.Tx, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET available_balance = $1, frozen_balance = $2, rank = $3, subscription_end = $4
		WHERE id = $5
	`

	_, err := tx.Exec(ctx, query,
		account.AvailableBalance,
		account.FrozenBalance,
		string(account.Rank),
		account.SubscriptionEnd,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %d: %w", account.ID, err)
	}

	return nil
}

// GetLeaderboard retrieves all accounts ordered by descending available
// balance.
func (r *AccountRepository) GetLeaderboard(ctx context.Context) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY available_balance DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// ResetPremiumBalances restores every premium account's available balance
// to the given amount and returns how many rows changed.
func (r *AccountRepository) ResetPremiumBalances(ctx context.Context, amount decimal.Decimal) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET available_balance = $1 WHERE premium`, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to reset premium balances: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	account := &domain.Account{}
	var rank string

	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.AvailableBalance,
		&account.FrozenBalance,
		&account.Premium,
		&rank,
		&account.SubscriptionEnd,
		&account.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	account.Rank = domain.Rank(rank)
	return account, nil
}
