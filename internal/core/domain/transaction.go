package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer leg categories. The destination leg of an Investment -> Bank/Cash
// transfer is labelled as realized proceeds so analytics keep the economic meaning.
const (
	CategoryTransfer         = "Transfer"
	CategoryInvestmentReturn = "Investment Return"
	CategoryBalanceAdjust    = "Balance Adjustment"
)

// Transaction represents a single dated money movement, optionally linked to
// an account. Amount is signed: negative is an expense/outflow, positive is
// an income/inflow.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (e.g., UUID)
	UserID        string          `json:"userID"`        // Owning user (NON-NULL)
	Text          string          `json:"text"`          // User-facing label
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`  // Denormalized label, not a FK
	AccountID     *string         `json:"accountID"` // Nullable; nil means no balance effect
	Date          time.Time       `json:"date"`      // Point in time the movement is attributed to

	// SubscriptionID links billing transactions back to their subscription.
	SubscriptionID *string `json:"subscriptionID,omitempty"`
	// TransferGroupID links the two legs of a transfer; legs delete together.
	TransferGroupID *string `json:"transferGroupID,omitempty"`

	AuditFields
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsIncome reports whether the transaction is an inflow.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// AffectsBalance reports whether the transaction is linked to an account.
func (t Transaction) AffectsBalance() bool {
	return t.AccountID != nil && *t.AccountID != ""
}

// InDateRange reports whether the transaction date falls within [from, to].
// A zero bound is treated as open.
func (t Transaction) InDateRange(from, to time.Time) bool {
	if !from.IsZero() && t.Date.Before(from) {
		return false
	}
	if !to.IsZero() && t.Date.After(to) {
		return false
	}
	return true
}
