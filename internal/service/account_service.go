package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tradesim/internal/domain"
	"tradesim/internal/repository"
)

// AccountService manages user accounts: registration, balance
// adjustments, the leaderboard and contest balance resets.
type AccountService struct {
	pool     *pgxpool.Pool
	accounts *repository.AccountRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(pool *pgxpool.Pool, accounts *repository.AccountRepository) *AccountService {
	return &AccountService{pool: pool, accounts: accounts}
}

// Create registers a new account. Premium accounts start with the
// standard contest balance and a one-month subscription; everyone else
// starts at zero.
func (s *AccountService) Create(ctx context.Context, username string, premium bool) (*domain.Account, error) {
	if username == "" {
		return nil, domain.NewValidationError("username is required")
	}

	account := &domain.Account{
		Username:         username,
		AvailableBalance: decimal.Zero,
		FrozenBalance:    decimal.Zero,
		Premium:          premium,
		Rank:             domain.RankRookie,
		CreatedAt:        time.Now().UTC(),
	}
	if premium {
		account.AvailableBalance = domain.PremiumStartingBalance
		end := time.Now().UTC().AddDate(0, 1, 0)
		account.SubscriptionEnd = &end
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	log.Printf("[OK] Account created: %s (id=%d, premium=%t)", account.Username, account.ID, account.Premium)
	return account, nil
}

// GetByID retrieves an account.
func (s *AccountService) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// AdjustBalance credits (or, with a negative amount, debits) an account's
// available balance under the account lock. Non-premium accounts are left
// untouched.
func (s *AccountService) AdjustBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	tx, err := repository.BeginLocking(ctx, s.pool)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := s.accounts.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		return err
	}
	if !account.Premium {
		return nil
	}

	next := account.AvailableBalance.Add(amount)
	if next.IsNegative() {
		return domain.ErrInsufficientFunds
	}
	account.AvailableBalance = next

	if err := s.accounts.UpdateBalancesTx(ctx, tx, account); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit balance adjustment: %w", err)
	}

	return nil
}

// Leaderboard returns all accounts ordered by descending available
// balance.
func (s *AccountService) Leaderboard(ctx context.Context) ([]*domain.Account, error) {
	return s.accounts.GetLeaderboard(ctx)
}

// ResetBalances restores every premium account to the standard contest
// starting balance.
func (s *AccountService) ResetBalances(ctx context.Context) error {
	n, err := s.accounts.ResetPremiumBalances(ctx, domain.PremiumStartingBalance)
	if err != nil {
		return err
	}
	log.Printf("[OK] Reset %d premium account balance(s) to %s", n, domain.PremiumStartingBalance)
	return nil
}
