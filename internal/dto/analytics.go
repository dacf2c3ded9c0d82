package dto

import (
	"github.com/spendlog/spendlog/internal/core/domain"
)

// AnalyticsPeriodParams bounds an analytics query by transaction date.
// Both bounds are optional; RFC 3339 timestamps.
type AnalyticsPeriodParams struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// SummaryResponse wraps the period summary.
type SummaryResponse struct {
	Summary domain.PeriodSummary `json:"summary"`
}

// CategoryBreakdownResponse wraps a per-category breakdown.
type CategoryBreakdownResponse struct {
	Type       domain.FlowType        `json:"type"`
	Categories []domain.CategoryTotal `json:"categories"`
}

// NetWorthResponse wraps the net worth decomposition.
type NetWorthResponse struct {
	NetWorth           domain.NetWorth            `json:"netWorth"`
	Loans              []domain.LoanProgress      `json:"loans"`
	CreditUtilizations []domain.CreditUtilization `json:"creditUtilizations"`
}

// ProjectionResponse wraps the investment growth estimate.
type ProjectionResponse struct {
	Projection domain.InvestmentProjection `json:"projection"`
}

// BudgetReportResponse wraps the month's spend-vs-budget comparison.
type BudgetReportResponse struct {
	Reports []domain.BudgetReport `json:"reports"`
}
