package domain

import "github.com/shopspring/decimal"

// BudgetPeriod is the period a budget allocation covers.
type BudgetPeriod string

const (
	BudgetMonthly BudgetPeriod = "MONTHLY"
	BudgetYearly  BudgetPeriod = "YEARLY"
)

// Budget is a per-category spending or saving allocation.
type Budget struct {
	BudgetID string          `json:"budgetID"` // Primary Key (e.g., UUID)
	UserID   string          `json:"userID"`   // Owning user (NON-NULL)
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Period   BudgetPeriod    `json:"period"`

	AuditFields
}

// MonthlyAmount normalizes the allocation to a per-month figure.
func (b Budget) MonthlyAmount() decimal.Decimal {
	if b.Period == BudgetYearly {
		return b.Amount.Div(decimal.NewFromInt(12))
	}
	return b.Amount
}
