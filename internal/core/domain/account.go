package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType classifies a wallet by the kind of money it holds.
type AccountType string

const (
	Cash       AccountType = "CASH"
	Bank       AccountType = "BANK"
	CreditCard AccountType = "CREDIT_CARD"
	Investment AccountType = "INVESTMENT"
	Loan       AccountType = "LOAN"
)

// Account represents a wallet within the core domain.
// This is the primary representation used by services.
//
// For CreditCard accounts, Balance is the *available* credit on the card;
// the outstanding debt is CreditLimit - Balance.
type Account struct {
	AccountID   string          `json:"accountID"` // Primary Key (e.g., UUID)
	UserID      string          `json:"userID"`    // Owning user (NON-NULL)
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"` // Persisted running balance

	// Credit card fields
	CreditLimit *decimal.Decimal `json:"creditLimit,omitempty"`

	// Investment fields
	InterestRate *decimal.Decimal `json:"interestRate,omitempty"` // Annual rate in percent

	// Loan fields
	LoanTotal   *decimal.Decimal `json:"loanTotal,omitempty"`
	LoanPayment *decimal.Decimal `json:"loanPayment,omitempty"`
	DownPayment *decimal.Decimal `json:"downPayment,omitempty"`

	AuditFields
}

// Debt returns the outstanding amount on a credit card account.
// Zero for accounts without a credit limit.
func (a Account) Debt() decimal.Decimal {
	if a.AccountType != CreditCard || a.CreditLimit == nil {
		return decimal.Zero
	}
	return a.CreditLimit.Sub(a.Balance)
}

// ValidAccountType reports whether s names a known account type.
func ValidAccountType(s string) bool {
	switch AccountType(s) {
	case Cash, Bank, CreditCard, Investment, Loan:
		return true
	}
	return false
}
