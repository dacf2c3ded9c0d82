package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/spendlog/spendlog/internal/apperrors"
	"github.com/spendlog/spendlog/internal/core/domain"
	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/core/services"
)

type AnalyticsServiceTestSuite struct {
	suite.Suite
	mockTxnRepo     *MockTransactionRepository
	mockAccountRepo *MockAccountRepository
	mockBudgetRepo  *MockBudgetRepository
	mockSubRepo     *MockSubscriptionRepository
	service         portssvc.AnalyticsSvcFacade
	userID          string
	from            time.Time
	to              time.Time
}

func (suite *AnalyticsServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockBudgetRepo = new(MockBudgetRepository)
	suite.mockSubRepo = new(MockSubscriptionRepository)
	suite.service = services.NewAnalyticsService(suite.mockTxnRepo, suite.mockAccountRepo, suite.mockBudgetRepo, suite.mockSubRepo)

	suite.userID = uuid.NewString()
	suite.from = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	suite.to = time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC)
}

func txnOf(amount int64, category string) domain.Transaction {
	return domain.Transaction{
		TransactionID: uuid.NewString(),
		Amount:        decimal.NewFromInt(amount),
		Category:      category,
		Date:          time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *AnalyticsServiceTestSuite) TestGetPeriodSummary() {
	ctx := context.Background()
	txns := []domain.Transaction{
		txnOf(5000, "Salary"),
		txnOf(-1500, "Rent"),
		txnOf(-500, "Food"),
	}
	suite.mockTxnRepo.On("ListTransactionsByDateRange", ctx, suite.userID, suite.from, suite.to).Return(txns, nil).Once()

	summary, err := suite.service.GetPeriodSummary(ctx, suite.userID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(summary.Income.Equal(decimal.NewFromInt(5000)))
	suite.True(summary.Expense.Equal(decimal.NewFromInt(2000)))
	suite.True(summary.Net.Equal(decimal.NewFromInt(3000)))
	suite.True(summary.SavingsRate.Equal(decimal.NewFromInt(60)))
}

func (suite *AnalyticsServiceTestSuite) TestGetPeriodSummary_NoFlow() {
	ctx := context.Background()
	suite.mockTxnRepo.On("ListTransactionsByDateRange", ctx, suite.userID, suite.from, suite.to).Return([]domain.Transaction{}, nil).Once()

	summary, err := suite.service.GetPeriodSummary(ctx, suite.userID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(summary.SavingsRate.IsZero())
}

func (suite *AnalyticsServiceTestSuite) TestGetPeriodSummary_SpendWithoutIncome() {
	ctx := context.Background()
	txns := []domain.Transaction{txnOf(-300, "Food")}
	suite.mockTxnRepo.On("ListTransactionsByDateRange", ctx, suite.userID, suite.from, suite.to).Return(txns, nil).Once()

	summary, err := suite.service.GetPeriodSummary(ctx, suite.userID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.True(summary.SavingsRate.Equal(decimal.NewFromInt(-100)))
}

func (suite *AnalyticsServiceTestSuite) TestGetPeriodSummary_TransferLegsDoNotInflateTotals() {
	ctx := context.Background()
	groupID := uuid.NewString()
	outLeg := txnOf(-1000, domain.CategoryTransfer)
	outLeg.TransferGroupID = &groupID
	inLeg := txnOf(1000, domain.CategoryTransfer)
	inLeg.TransferGroupID = &groupID
	returnGroupID := uuid.NewString()
	returnLeg := txnOf(500, domain.CategoryInvestmentReturn)
	returnLeg.TransferGroupID = &returnGroupID
	txns := []domain.Transaction{
		txnOf(5000, "Salary"),
		txnOf(-2000, "Rent"),
		outLeg,
		inLeg,
		returnLeg,
	}
	suite.mockTxnRepo.On("ListTransactionsByDateRange", ctx, suite.userID, suite.from, suite.to).Return(txns, nil).Once()

	summary, err := suite.service.GetPeriodSummary(ctx, suite.userID, suite.from, suite.to)

	suite.Require().NoError(err)
	// The plain transfer pair cancels out entirely; the investment return
	// leg is real income.
	suite.True(summary.Income.Equal(decimal.NewFromInt(5500)))
	suite.True(summary.Expense.Equal(decimal.NewFromInt(2000)))
	suite.True(summary.Net.Equal(decimal.NewFromInt(3500)))
}

func (suite *AnalyticsServiceTestSuite) TestGetCategoryBreakdown_ExcludesTransfersAndSortsDesc() {
	ctx := context.Background()
	groupID := uuid.NewString()
	transferLeg := txnOf(-400, domain.CategoryTransfer)
	transferLeg.TransferGroupID = &groupID
	txns := []domain.Transaction{
		txnOf(-100, "Food"),
		txnOf(-250, "Food"),
		txnOf(-600, "Rent"),
		txnOf(-50, ""),
		txnOf(2000, "Salary"),
		transferLeg,
	}
	suite.mockTxnRepo.On("ListTransactionsByDateRange", ctx, suite.userID, suite.from, suite.to).Return(txns, nil).Once()

	breakdown, err := suite.service.GetCategoryBreakdown(ctx, suite.userID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.Require().Len(breakdown, 3)
	suite.Equal("Rent", breakdown[0].Category)
	suite.True(breakdown[0].Total.Equal(decimal.NewFromInt(600)))
	suite.Equal("Food", breakdown[1].Category)
	suite.True(breakdown[1].Total.Equal(decimal.NewFromInt(350)))
	suite.Equal(2, breakdown[1].Count)
	suite.Equal("Uncategorized", breakdown[2].Category)
}

func (suite *AnalyticsServiceTestSuite) TestGetNetWorth_Decomposition() {
	ctx := context.Background()
	creditLimit := decimal.NewFromInt(2000)
	loanTotal := decimal.NewFromInt(10000)
	downPayment := decimal.NewFromInt(1000)
	accounts := []domain.Account{
		{AccountID: uuid.NewString(), Name: "Cash", AccountType: domain.Cash, Balance: decimal.NewFromInt(500)},
		{AccountID: uuid.NewString(), Name: "Bank", AccountType: domain.Bank, Balance: decimal.NewFromInt(4500)},
		{AccountID: uuid.NewString(), Name: "Fund", AccountType: domain.Investment, Balance: decimal.NewFromInt(12000)},
		{AccountID: uuid.NewString(), Name: "Card", AccountType: domain.CreditCard, Balance: decimal.NewFromInt(1500), CreditLimit: &creditLimit},
		{AccountID: uuid.NewString(), Name: "Car loan", AccountType: domain.Loan, Balance: decimal.NewFromInt(-6000), LoanTotal: &loanTotal, DownPayment: &downPayment},
	}
	suite.mockAccountRepo.On("ListAccounts", ctx, suite.userID).Return(accounts, nil).Once()

	nw, loans, cards, err := suite.service.GetNetWorth(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.True(nw.Liquid.Equal(decimal.NewFromInt(5000)))
	suite.True(nw.Investments.Equal(decimal.NewFromInt(12000)))
	suite.True(nw.CreditCardDebt.Equal(decimal.NewFromInt(500)))
	suite.True(nw.LoanDebt.Equal(decimal.NewFromInt(6000)))
	// 5000 + 12000 - 500 - 6000
	suite.True(nw.Total.Equal(decimal.NewFromInt(10500)))

	suite.Require().Len(cards, 1)
	suite.True(cards[0].Debt.Equal(decimal.NewFromInt(500)))
	suite.True(cards[0].Percent.Equal(decimal.NewFromInt(25)))

	suite.Require().Len(loans, 1)
	// 10000 total, 6000 outstanding, 1000 down payment: 5000 paid.
	suite.True(loans[0].Paid.Equal(decimal.NewFromInt(5000)))
	suite.True(loans[0].Percent.Equal(decimal.NewFromInt(50)))
}

func (suite *AnalyticsServiceTestSuite) TestProjectInvestment_CompoundGrowth() {
	ctx := context.Background()

	proj, err := suite.service.ProjectInvestment(ctx, decimal.NewFromInt(10000), decimal.NewFromInt(500), 6.0, 5)

	suite.Require().NoError(err)
	suite.Equal(5, proj.Years)
	// 10000 * 1.005^60 + 500 * (1.005^60 - 1) / 0.005
	suite.True(proj.FutureValue.GreaterThan(decimal.NewFromInt(48000)))
	suite.True(proj.FutureValue.LessThan(decimal.NewFromInt(49000)))
}

func (suite *AnalyticsServiceTestSuite) TestProjectInvestment_ZeroRate() {
	ctx := context.Background()

	proj, err := suite.service.ProjectInvestment(ctx, decimal.NewFromInt(1000), decimal.NewFromInt(100), 0, 2)

	suite.Require().NoError(err)
	// No growth: principal plus 24 contributions.
	suite.True(proj.FutureValue.Equal(decimal.NewFromInt(3400)))
}

func (suite *AnalyticsServiceTestSuite) TestProjectInvestment_NegativeRateRejected() {
	ctx := context.Background()

	_, err := suite.service.ProjectInvestment(ctx, decimal.NewFromInt(1000), decimal.Zero, -1, 5)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AnalyticsServiceTestSuite) TestProjectInvestment_DefaultsHorizon() {
	ctx := context.Background()

	proj, err := suite.service.ProjectInvestment(ctx, decimal.NewFromInt(1000), decimal.Zero, 0, 0)

	suite.Require().NoError(err)
	suite.Equal(5, proj.Years)
}

func (suite *AnalyticsServiceTestSuite) TestDefaultInvestmentProjection_DerivesInputs() {
	ctx := context.Background()
	rateEight := decimal.NewFromInt(8)
	accounts := []domain.Account{
		{AccountID: uuid.NewString(), AccountType: domain.Investment, Balance: decimal.NewFromInt(9000), InterestRate: &rateEight},
		{AccountID: uuid.NewString(), AccountType: domain.Investment, Balance: decimal.NewFromInt(3000)},
		{AccountID: uuid.NewString(), AccountType: domain.Bank, Balance: decimal.NewFromInt(5000)},
	}
	budgets := []domain.Budget{
		{BudgetID: uuid.NewString(), Category: "Investments", Amount: decimal.NewFromInt(300), Period: domain.BudgetMonthly},
	}
	subs := []domain.Subscription{
		{SubscriptionID: uuid.NewString(), Category: "Investment SIP", Amount: decimal.NewFromInt(6000), BillingCycle: domain.Yearly, Type: domain.FlowExpense},
	}
	suite.mockAccountRepo.On("ListAccounts", ctx, suite.userID).Return(accounts, nil).Once()
	suite.mockBudgetRepo.On("ListBudgets", ctx, suite.userID).Return(budgets, nil).Once()
	suite.mockSubRepo.On("ListSubscriptions", ctx, suite.userID).Return(subs, nil).Once()

	proj, err := suite.service.DefaultInvestmentProjection(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.True(proj.Principal.Equal(decimal.NewFromInt(12000)))
	// Weighted rate: (9000*8 + 3000*6) / 12000 = 7.5
	suite.True(proj.AnnualRatePercent.Equal(decimal.NewFromFloat(7.5)))
	// Yearly 6000 normalizes to 500/month, which beats the 300 budget.
	suite.True(proj.MonthlyContribution.Equal(decimal.NewFromInt(500)))
}

func (suite *AnalyticsServiceTestSuite) TestGetBudgetReport() {
	ctx := context.Background()
	budgets := []domain.Budget{
		{BudgetID: uuid.NewString(), Category: "Food", Amount: decimal.NewFromInt(600), Period: domain.BudgetMonthly},
		{BudgetID: uuid.NewString(), Category: "Travel", Amount: decimal.NewFromInt(200), Period: domain.BudgetMonthly},
	}
	txns := []domain.Transaction{
		txnOf(-250, "food"),
		txnOf(-100, "Food"),
	}
	suite.mockBudgetRepo.On("ListBudgets", ctx, suite.userID).Return(budgets, nil).Once()
	suite.mockTxnRepo.On("ListTransactionsByDateRange", ctx, suite.userID, suite.from, suite.to).Return(txns, nil).Once()

	reports, err := suite.service.GetBudgetReport(ctx, suite.userID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.Require().Len(reports, 2)
	// Category match is case-insensitive.
	suite.True(reports[0].Spent.Equal(decimal.NewFromInt(350)))
	suite.True(reports[0].Remaining.Equal(decimal.NewFromInt(250)))
	suite.True(reports[1].Spent.IsZero())
	suite.True(reports[1].Remaining.Equal(decimal.NewFromInt(200)))
}

func (suite *AnalyticsServiceTestSuite) TestGetBudgetReport_NoBudgets() {
	ctx := context.Background()
	suite.mockBudgetRepo.On("ListBudgets", ctx, suite.userID).Return([]domain.Budget{}, nil).Once()

	reports, err := suite.service.GetBudgetReport(ctx, suite.userID, suite.from, suite.to)

	suite.Require().NoError(err)
	suite.Empty(reports)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "ListTransactionsByDateRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyticsService(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceTestSuite))
}
