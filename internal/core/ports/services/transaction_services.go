package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/core/domain"
	"github.com/spendlog/spendlog/internal/dto"
)

// TransactionSvcFacade defines ledger operations. Mutations keep wallet
// balances in step with the ledger rows: adds apply the amount, edits revert
// the old row before applying the new one, deletes revert, and transfer legs
// move as a linked pair.
type TransactionSvcFacade interface {
	AddTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, error)
	GetTransactionByID(ctx context.Context, userID string, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
	UpdateTransaction(ctx context.Context, userID string, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error)
	// DeleteTransaction removes the row and reverts its balance effect. When
	// the row belongs to a transfer group, both legs are removed together.
	DeleteTransaction(ctx context.Context, userID string, transactionID string) error
	Transfer(ctx context.Context, userID string, req dto.TransferRequest) ([]domain.Transaction, error)
	// SuggestTransferAmount returns the destination's current debt for
	// credit card and loan wallets, zero otherwise.
	SuggestTransferAmount(ctx context.Context, userID string, destinationAccountID string) (decimal.Decimal, error)
}
