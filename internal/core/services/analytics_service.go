package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/apperrors"
	"github.com/spendlog/spendlog/internal/core/domain"
	portsrepo "github.com/spendlog/spendlog/internal/core/ports/repositories"
	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
)

// projectionYears is the fixed horizon of the investment growth estimate.
const projectionYears = 5

// defaultAnnualRatePercent is assumed for investment accounts without a
// stored interest rate.
var defaultAnnualRatePercent = decimal.NewFromInt(6)

var hundred = decimal.NewFromInt(100)

// analyticsService derives reporting figures from the transaction log and
// account ledger. Everything here is read-only.
type analyticsService struct {
	BaseService
	transactionRepo  portsrepo.TransactionRepository
	accountRepo      portsrepo.AccountRepository
	budgetRepo       portsrepo.BudgetRepository
	subscriptionRepo portsrepo.SubscriptionRepository
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(
	transactionRepo portsrepo.TransactionRepository,
	accountRepo portsrepo.AccountRepository,
	budgetRepo portsrepo.BudgetRepository,
	subscriptionRepo portsrepo.SubscriptionRepository,
) portssvc.AnalyticsSvcFacade {
	return &analyticsService{
		transactionRepo:  transactionRepo,
		accountRepo:      accountRepo,
		budgetRepo:       budgetRepo,
		subscriptionRepo: subscriptionRepo,
	}
}

var _ portssvc.AnalyticsSvcFacade = (*analyticsService)(nil)

// savingsRate computes the savings rate in percent. Expense is a positive
// magnitude. The zero-income cases are deliberate: no flow at all reads as 0,
// spending with no income reads as -100 rather than a division blowup.
func savingsRate(income, expense decimal.Decimal) decimal.Decimal {
	if income.IsPositive() {
		return income.Sub(expense).Div(income).Mul(hundred)
	}
	if expense.IsPositive() {
		return hundred.Neg()
	}
	return decimal.Zero
}

// GetPeriodSummary totals income and expense over [from, to]. Plain
// transfer legs are skipped, same as in the category breakdown: the pair
// nets to zero but would inflate both totals and skew the savings rate.
// Investment Return legs still count as income.
func (s *analyticsService) GetPeriodSummary(ctx context.Context, userID string, from, to time.Time) (*domain.PeriodSummary, error) {
	txns, err := s.transactionRepo.ListTransactionsByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	income := decimal.Zero
	expense := decimal.Zero
	for _, txn := range txns {
		if txn.TransferGroupID != nil && txn.Category == domain.CategoryTransfer {
			continue
		}
		if txn.IsIncome() {
			income = income.Add(txn.Amount)
		} else {
			expense = expense.Add(txn.Amount.Abs())
		}
	}

	return &domain.PeriodSummary{
		From:        from,
		To:          to,
		Income:      income,
		Expense:     expense,
		Net:         income.Sub(expense),
		SavingsRate: savingsRate(income, expense),
	}, nil
}

// GetCategoryBreakdown totals expenses per category over [from, to],
// largest first. Transfer legs are excluded; they move money, they don't
// spend it.
func (s *analyticsService) GetCategoryBreakdown(ctx context.Context, userID string, from, to time.Time) ([]domain.CategoryTotal, error) {
	txns, err := s.transactionRepo.ListTransactionsByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	totals := map[string]*domain.CategoryTotal{}
	for _, txn := range txns {
		if !txn.IsExpense() || txn.TransferGroupID != nil {
			continue
		}
		category := txn.Category
		if category == "" {
			category = "Uncategorized"
		}
		entry, ok := totals[category]
		if !ok {
			entry = &domain.CategoryTotal{Category: category}
			totals[category] = entry
		}
		entry.Total = entry.Total.Add(txn.Amount.Abs())
		entry.Count++
	}

	breakdown := make([]domain.CategoryTotal, 0, len(totals))
	for _, entry := range totals {
		breakdown = append(breakdown, *entry)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Total.Equal(breakdown[j].Total) {
			return breakdown[i].Category < breakdown[j].Category
		}
		return breakdown[i].Total.GreaterThan(breakdown[j].Total)
	})
	return breakdown, nil
}

// GetNetWorth computes liquid + investments - (credit card debt + loan debt),
// with per-loan payoff progress and per-card utilization.
func (s *analyticsService) GetNetWorth(ctx context.Context, userID string) (*domain.NetWorth, []domain.LoanProgress, []domain.CreditUtilization, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}

	nw := &domain.NetWorth{}
	loans := []domain.LoanProgress{}
	cards := []domain.CreditUtilization{}

	for _, acc := range accounts {
		switch acc.AccountType {
		case domain.Cash, domain.Bank:
			nw.Liquid = nw.Liquid.Add(acc.Balance)
		case domain.Investment:
			nw.Investments = nw.Investments.Add(acc.Balance)
		case domain.CreditCard:
			debt := acc.Debt()
			nw.CreditCardDebt = nw.CreditCardDebt.Add(debt)
			limit := decimal.Zero
			percent := decimal.Zero
			if acc.CreditLimit != nil && acc.CreditLimit.IsPositive() {
				limit = *acc.CreditLimit
				percent = debt.Div(limit).Mul(hundred)
			}
			cards = append(cards, domain.CreditUtilization{
				AccountID: acc.AccountID,
				Name:      acc.Name,
				Debt:      debt,
				Limit:     limit,
				Percent:   percent,
			})
		case domain.Loan:
			debt := acc.Balance.Abs()
			nw.LoanDebt = nw.LoanDebt.Add(debt)
			loans = append(loans, loanProgress(acc, debt))
		}
	}

	nw.Total = nw.Liquid.Add(nw.Investments).Sub(nw.CreditCardDebt).Sub(nw.LoanDebt)
	return nw, loans, cards, nil
}

func loanProgress(acc domain.Account, debt decimal.Decimal) domain.LoanProgress {
	progress := domain.LoanProgress{
		AccountID: acc.AccountID,
		Name:      acc.Name,
	}
	if acc.LoanTotal == nil || !acc.LoanTotal.IsPositive() {
		return progress
	}
	progress.Total = *acc.LoanTotal
	progress.Paid = progress.Total.Sub(debt)
	if acc.DownPayment != nil {
		progress.Paid = progress.Paid.Add(*acc.DownPayment)
	}
	percent := progress.Paid.Div(progress.Total).Mul(hundred)
	if percent.IsNegative() {
		percent = decimal.Zero
	}
	if percent.GreaterThan(hundred) {
		percent = hundred
	}
	progress.Percent = percent
	return progress
}

// ProjectInvestment estimates future value with monthly compounding:
// FV = P(1+r/n)^(nt) + PMT * ((1+r/n)^(nt) - 1) / (r/n), n=12.
func (s *analyticsService) ProjectInvestment(ctx context.Context, principal, monthlyContribution decimal.Decimal, annualRatePercent float64, years int) (*domain.InvestmentProjection, error) {
	if years <= 0 {
		years = projectionYears
	}
	if annualRatePercent < 0 {
		return nil, fmt.Errorf("%w: annual rate cannot be negative", apperrors.ErrValidation)
	}

	p, _ := principal.Float64()
	pmt, _ := monthlyContribution.Float64()
	monthlyRate := annualRatePercent / 100 / 12
	months := float64(12 * years)

	var fv float64
	if monthlyRate == 0 {
		fv = p + pmt*months
	} else {
		growth := math.Pow(1+monthlyRate, months)
		fv = p*growth + pmt*(growth-1)/monthlyRate
	}

	return &domain.InvestmentProjection{
		Principal:           principal,
		MonthlyContribution: monthlyContribution,
		AnnualRatePercent:   decimal.NewFromFloat(annualRatePercent),
		Years:               years,
		FutureValue:         decimal.NewFromFloat(fv).Round(2),
	}, nil
}

// DefaultInvestmentProjection derives projection inputs from the user's data:
// principal = total investment balances, rate = balance-weighted average of
// account rates (6% where unset), contribution = the greater of Investment
// budget allocations and Investment-tagged subscription amounts, per month.
func (s *analyticsService) DefaultInvestmentProjection(ctx context.Context, userID string) (*domain.InvestmentProjection, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	principal := decimal.Zero
	weightedRate := decimal.Zero
	for _, acc := range accounts {
		if acc.AccountType != domain.Investment {
			continue
		}
		rate := defaultAnnualRatePercent
		if acc.InterestRate != nil {
			rate = *acc.InterestRate
		}
		principal = principal.Add(acc.Balance)
		weightedRate = weightedRate.Add(acc.Balance.Mul(rate))
	}

	rate := defaultAnnualRatePercent
	if principal.IsPositive() {
		rate = weightedRate.Div(principal)
	}

	contribution, err := s.monthlyInvestmentContribution(ctx, userID)
	if err != nil {
		return nil, err
	}

	ratef, _ := rate.Float64()
	return s.ProjectInvestment(ctx, principal, contribution, ratef, projectionYears)
}

// monthlyInvestmentContribution is the greater of Investment-category budget
// allocations and Investment-tagged subscription amounts, normalized monthly.
func (s *analyticsService) monthlyInvestmentContribution(ctx context.Context, userID string) (decimal.Decimal, error) {
	budgets, err := s.budgetRepo.ListBudgets(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	fromBudgets := decimal.Zero
	for _, b := range budgets {
		if isInvestmentCategory(b.Category) {
			fromBudgets = fromBudgets.Add(b.MonthlyAmount())
		}
	}

	subs, err := s.subscriptionRepo.ListSubscriptions(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	fromSubs := decimal.Zero
	for _, sub := range subs {
		if !isInvestmentCategory(sub.Category) {
			continue
		}
		amount := sub.Amount.Abs()
		if sub.BillingCycle == domain.Yearly {
			amount = amount.Div(decimal.NewFromInt(12))
		}
		fromSubs = fromSubs.Add(amount)
	}

	if fromSubs.GreaterThan(fromBudgets) {
		return fromSubs, nil
	}
	return fromBudgets, nil
}

func isInvestmentCategory(category string) bool {
	return strings.Contains(strings.ToLower(category), "investment")
}

// GetBudgetReport compares actual spend per budget category over [from, to].
func (s *analyticsService) GetBudgetReport(ctx context.Context, userID string, from, to time.Time) ([]domain.BudgetReport, error) {
	budgets, err := s.budgetRepo.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return []domain.BudgetReport{}, nil
	}

	txns, err := s.transactionRepo.ListTransactionsByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	spentByCategory := map[string]decimal.Decimal{}
	for _, txn := range txns {
		if !txn.IsExpense() || txn.TransferGroupID != nil {
			continue
		}
		key := strings.ToLower(txn.Category)
		spentByCategory[key] = spentByCategory[key].Add(txn.Amount.Abs())
	}

	reports := make([]domain.BudgetReport, 0, len(budgets))
	for _, b := range budgets {
		spent := spentByCategory[strings.ToLower(b.Category)]
		reports = append(reports, domain.BudgetReport{
			Category:  b.Category,
			Budgeted:  b.Amount,
			Spent:     spent,
			Remaining: b.Amount.Sub(spent),
		})
	}
	return reports, nil
}
