package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/internal/core/domain"
)

// CreateTransactionRequest defines the data needed to record a money movement.
// Amount is signed: negative is an expense, positive is income.
type CreateTransactionRequest struct {
	Text      string          `json:"text" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Category  string          `json:"category"`
	AccountID *string         `json:"accountID"`
	Date      time.Time       `json:"date"`

	// SkipBalance suppresses the account balance effect. Used for bulk
	// imports where the imported balances already reflect the history.
	SkipBalance bool `json:"skipBalance"`

	// SubscriptionID is set internally by billing paths, not by clients.
	SubscriptionID *string `json:"-"`
}

// UpdateTransactionRequest defines the editable transaction fields.
// Pointer fields distinguish "not provided" from zero values; an AccountID
// of "" detaches the transaction from any account.
type UpdateTransactionRequest struct {
	Text      *string          `json:"text"`
	Amount    *decimal.Decimal `json:"amount"`
	Category  *string          `json:"category"`
	AccountID *string          `json:"accountID"`
	Date      *time.Time       `json:"date"`
}

// TransferRequest moves an amount between two accounts.
type TransferRequest struct {
	SourceAccountID      string          `json:"sourceAccountID" binding:"required"`
	DestinationAccountID string          `json:"destinationAccountID" binding:"required"`
	Amount               decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Text                 string          `json:"text"`
	Date                 time.Time       `json:"date"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID   string          `json:"transactionID"`
	Text            string          `json:"text"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	AccountID       *string         `json:"accountID,omitempty"`
	Date            time.Time       `json:"date"`
	SubscriptionID  *string         `json:"subscriptionID,omitempty"`
	TransferGroupID *string         `json:"transferGroupID,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.TransactionID,
		Text:            txn.Text,
		Amount:          txn.Amount,
		Category:        txn.Category,
		AccountID:       txn.AccountID,
		Date:            txn.Date,
		SubscriptionID:  txn.SubscriptionID,
		TransferGroupID: txn.TransferGroupID,
		CreatedAt:       txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of transactions to response DTOs.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// TransferResponse returns both legs of a completed transfer.
type TransferResponse struct {
	TransferGroupID string                `json:"transferGroupID"`
	Legs            []TransactionResponse `json:"legs"`
}

// TransferSuggestionResponse carries the auto-fill amount for a credit card
// destination (its current debt).
type TransferSuggestionResponse struct {
	DestinationAccountID string          `json:"destinationAccountID"`
	Amount               decimal.Decimal `json:"amount"`
}
