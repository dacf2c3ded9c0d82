package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
//
// IncrementBalance must be implemented as an atomic numeric increment at the
// storage layer, never as read-modify-write in application code.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)
	CountAccounts(ctx context.Context, userID string) (int, error)
	UpdateAccount(ctx context.Context, account domain.Account) error
	// DeleteAccount removes the account row only; transactions referencing it
	// are left orphaned.
	DeleteAccount(ctx context.Context, accountID string) error
	IncrementBalance(ctx context.Context, accountID string, delta decimal.Decimal, userID string, now time.Time) error
	// SetBalance overwrites the stored balance directly (manual adjustment flow).
	SetBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error
}
