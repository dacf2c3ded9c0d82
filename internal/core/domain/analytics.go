package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodSummary aggregates signed transaction flow over a date range.
type PeriodSummary struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"` // Positive magnitude
	Net         decimal.Decimal `json:"net"`
	SavingsRate decimal.Decimal `json:"savingsRate"` // Percent; see AnalyticsService for edge cases
}

// CategoryTotal is one slice of a category breakdown.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"` // Positive magnitude
	Count    int             `json:"count"`
}

// NetWorth decomposes a user's position.
type NetWorth struct {
	Liquid         decimal.Decimal `json:"liquid"`      // Cash + bank balances
	Investments    decimal.Decimal `json:"investments"` // Investment balances
	CreditCardDebt decimal.Decimal `json:"creditCardDebt"`
	LoanDebt       decimal.Decimal `json:"loanDebt"`
	Total          decimal.Decimal `json:"total"`
}

// LoanProgress reports payoff progress for one loan account.
type LoanProgress struct {
	AccountID string          `json:"accountID"`
	Name      string          `json:"name"`
	Total     decimal.Decimal `json:"total"`
	Paid      decimal.Decimal `json:"paid"`
	Percent   decimal.Decimal `json:"percent"` // Clamped to [0, 100]
}

// CreditUtilization reports debt vs limit for one credit card account.
type CreditUtilization struct {
	AccountID string          `json:"accountID"`
	Name      string          `json:"name"`
	Debt      decimal.Decimal `json:"debt"`
	Limit     decimal.Decimal `json:"limit"`
	Percent   decimal.Decimal `json:"percent"`
}

// InvestmentProjection is the compound-growth estimate over a fixed horizon.
type InvestmentProjection struct {
	Principal           decimal.Decimal `json:"principal"`
	MonthlyContribution decimal.Decimal `json:"monthlyContribution"`
	AnnualRatePercent   decimal.Decimal `json:"annualRatePercent"`
	Years               int             `json:"years"`
	FutureValue         decimal.Decimal `json:"futureValue"`
}

// BudgetReport compares actual spend against one budget allocation.
type BudgetReport struct {
	Category  string          `json:"category"`
	Budgeted  decimal.Decimal `json:"budgeted"`
	Spent     decimal.Decimal `json:"spent"` // Positive magnitude
	Remaining decimal.Decimal `json:"remaining"`
}
