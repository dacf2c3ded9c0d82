package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/core/domain"
)

// AnalyticsSvcFacade derives reporting figures from the ledger and wallets.
// Nothing here mutates state.
type AnalyticsSvcFacade interface {
	GetPeriodSummary(ctx context.Context, userID string, from, to time.Time) (*domain.PeriodSummary, error)
	GetCategoryBreakdown(ctx context.Context, userID string, from, to time.Time) ([]domain.CategoryTotal, error)
	GetNetWorth(ctx context.Context, userID string) (*domain.NetWorth, []domain.LoanProgress, []domain.CreditUtilization, error)
	ProjectInvestment(ctx context.Context, principal, monthlyContribution decimal.Decimal, annualRatePercent float64, years int) (*domain.InvestmentProjection, error)
	DefaultInvestmentProjection(ctx context.Context, userID string) (*domain.InvestmentProjection, error)
	GetBudgetReport(ctx context.Context, userID string, from, to time.Time) ([]domain.BudgetReport, error)
}
