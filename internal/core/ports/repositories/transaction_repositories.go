package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/internal/core/domain"
)

// TransactionRepository defines persistence operations for transactions.
//
// The write methods accept the set of account balance deltas the mutation
// implies; implementations apply the row writes and the balance increments
// within a single storage transaction so an interrupted mutation cannot leave
// balances drifted from the transaction log.
type TransactionRepository interface {
	// SaveTransactions inserts one or more transactions and applies
	// balanceDeltas atomically. Used for direct entry (one row), transfers
	// (two rows sharing a transfer group), billing, and bulk import (empty
	// deltas).
	SaveTransactions(ctx context.Context, txns []domain.Transaction, balanceDeltas map[string]decimal.Decimal) error
	// UpdateTransaction rewrites a transaction row and applies the
	// revert-then-reapply deltas of an edit.
	UpdateTransaction(ctx context.Context, txn domain.Transaction, balanceDeltas map[string]decimal.Decimal) error
	// DeleteTransactions removes the given rows and applies the reverting deltas.
	DeleteTransactions(ctx context.Context, transactionIDs []string, balanceDeltas map[string]decimal.Decimal) error

	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	FindTransactionsByGroupID(ctx context.Context, transferGroupID string) ([]domain.Transaction, error)
	// ListTransactions pages through a user's transactions ordered by date
	// descending, then creation time descending for same-day ties.
	ListTransactions(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
	ListTransactionsByDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Transaction, error)
	ListAllTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
}
