package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new wallet.
type CreateAccountRequest struct {
	Name        string             `json:"name" binding:"required"`
	AccountType domain.AccountType `json:"accountType" binding:"required,oneof=CASH BANK CREDIT_CARD INVESTMENT LOAN"`
	Balance     decimal.Decimal    `json:"balance"` // Opening balance

	CreditLimit  *decimal.Decimal `json:"creditLimit"`
	InterestRate *decimal.Decimal `json:"interestRate"`
	LoanTotal    *decimal.Decimal `json:"loanTotal"`
	LoanPayment  *decimal.Decimal `json:"loanPayment"`
	DownPayment  *decimal.Decimal `json:"downPayment"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
// Balance is deliberately absent: balance changes go through transactions or
// the adjustment flow, never a plain update.
type UpdateAccountRequest struct {
	Name         *string          `json:"name"`
	CreditLimit  *decimal.Decimal `json:"creditLimit"`
	InterestRate *decimal.Decimal `json:"interestRate"`
	LoanTotal    *decimal.Decimal `json:"loanTotal"`
	LoanPayment  *decimal.Decimal `json:"loanPayment"`
	DownPayment  *decimal.Decimal `json:"downPayment"`
}

// AdjustBalanceRequest sets an account's balance to an exact target value.
type AdjustBalanceRequest struct {
	Balance decimal.Decimal `json:"balance" binding:"required"`
	// RecordTransaction emits one income/expense transaction for the difference.
	RecordTransaction bool `json:"recordTransaction"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID    string             `json:"accountID"`
	Name         string             `json:"name"`
	AccountType  domain.AccountType `json:"accountType"`
	Balance      decimal.Decimal    `json:"balance"`
	CreditLimit  *decimal.Decimal   `json:"creditLimit,omitempty"`
	InterestRate *decimal.Decimal   `json:"interestRate,omitempty"`
	LoanTotal    *decimal.Decimal   `json:"loanTotal,omitempty"`
	LoanPayment  *decimal.Decimal   `json:"loanPayment,omitempty"`
	DownPayment  *decimal.Decimal   `json:"downPayment,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	LastUpdated  time.Time          `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:    acc.AccountID,
		Name:         acc.Name,
		AccountType:  acc.AccountType,
		Balance:      acc.Balance,
		CreditLimit:  acc.CreditLimit,
		InterestRate: acc.InterestRate,
		LoanTotal:    acc.LoanTotal,
		LoanPayment:  acc.LoanPayment,
		DownPayment:  acc.DownPayment,
		CreatedAt:    acc.CreatedAt,
		LastUpdated:  acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to response DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// AdjustBalanceResponse returns the adjusted account plus the recorded
// difference transaction, if one was requested.
type AdjustBalanceResponse struct {
	Account     AccountResponse      `json:"account"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}
