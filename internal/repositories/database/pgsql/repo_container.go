package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/spendlog/spendlog/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgx-backed repository off one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:      newPgxAccountRepository(dbPool),
		TransactionRepo:  newPgxTransactionRepository(dbPool),
		SubscriptionRepo: newPgxSubscriptionRepository(dbPool),
		CategoryRepo:     newPgxCategoryRepository(dbPool),
		BudgetRepo:       newPgxBudgetRepository(dbPool),
		UserRepo:         newPgxUserRepository(dbPool),
	}
}
