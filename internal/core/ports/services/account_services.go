package services

import (
	"context"

	"github.com/spendlog/spendlog/internal/core/domain"
	"github.com/spendlog/spendlog/internal/dto"
)

// AccountSvcFacade defines wallet operations. Every method is scoped by the
// owning user; balances are only mutated here through the adjustment flow,
// everything else goes through the transaction service.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, userID string, req dto.CreateAccountRequest) (*domain.Account, error)
	GetAccountByID(ctx context.Context, userID string, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, userID string, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error)
	// DeleteAccount removes the wallet; transactions referencing it are left
	// orphaned.
	DeleteAccount(ctx context.Context, userID string, accountID string) error
	// AdjustBalance sets the balance to the requested target directly and
	// optionally records one transaction for the difference.
	AdjustBalance(ctx context.Context, userID string, accountID string, req dto.AdjustBalanceRequest) (*domain.Account, *domain.Transaction, error)
	// EnsureDefaultAccounts seeds the starter wallets for a user with none.
	EnsureDefaultAccounts(ctx context.Context, userID string) error
}
