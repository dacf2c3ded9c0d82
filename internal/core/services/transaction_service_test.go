package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/spendlog/spendlog/internal/apperrors"
	"github.com/spendlog/spendlog/internal/core/domain"
	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/core/services"
	"github.com/spendlog/spendlog/internal/dto"
	"github.com/spendlog/spendlog/internal/platform/observability"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockTxnRepo     *MockTransactionRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.TransactionSvcFacade
	userID          string
	cashAccount     domain.Account
	bankAccount     domain.Account
	creditCard      domain.Account
	investment      domain.Account
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewTransactionService(suite.mockTxnRepo, suite.mockAccountRepo, observability.NewMetrics())

	suite.userID = uuid.NewString()

	suite.cashAccount = domain.Account{
		AccountID:   uuid.NewString(),
		UserID:      suite.userID,
		Name:        "Cash",
		AccountType: domain.Cash,
		Balance:     decimal.NewFromInt(1000),
	}
	suite.bankAccount = domain.Account{
		AccountID:   uuid.NewString(),
		UserID:      suite.userID,
		Name:        "Bank",
		AccountType: domain.Bank,
		Balance:     decimal.NewFromInt(5000),
	}
	creditLimit := decimal.NewFromInt(1000)
	suite.creditCard = domain.Account{
		AccountID:   uuid.NewString(),
		UserID:      suite.userID,
		Name:        "Card",
		AccountType: domain.CreditCard,
		Balance:     decimal.NewFromInt(700),
		CreditLimit: &creditLimit,
	}
	suite.investment = domain.Account{
		AccountID:   uuid.NewString(),
		UserID:      suite.userID,
		Name:        "Index Fund",
		AccountType: domain.Investment,
		Balance:     decimal.NewFromInt(20000),
	}
}

func (suite *TransactionServiceTestSuite) expectFindAccount(account domain.Account) {
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, account.AccountID).Return(&account, nil)
}

// deltasMatch builds a matcher over the balance delta map passed to the repository.
func deltasMatch(expected map[string]decimal.Decimal) interface{} {
	return mock.MatchedBy(func(deltas map[string]decimal.Decimal) bool {
		if len(deltas) != len(expected) {
			return false
		}
		for accountID, amount := range expected {
			got, ok := deltas[accountID]
			if !ok || !got.Equal(amount) {
				return false
			}
		}
		return true
	})
}

func (suite *TransactionServiceTestSuite) TestAddTransaction_AppliesBalanceDelta() {
	ctx := context.Background()
	amount := decimal.NewFromInt(-250)
	req := dto.CreateTransactionRequest{
		Text:      "Groceries",
		Amount:    amount,
		Category:  "Food",
		AccountID: &suite.cashAccount.AccountID,
	}

	suite.expectFindAccount(suite.cashAccount)
	suite.mockTxnRepo.On("SaveTransactions", ctx, mock.AnythingOfType("[]domain.Transaction"),
		deltasMatch(map[string]decimal.Decimal{suite.cashAccount.AccountID: amount})).Return(nil).Once()

	txn, err := suite.service.AddTransaction(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.NotEmpty(txn.TransactionID)
	suite.Equal(suite.userID, txn.UserID)
	suite.True(txn.Amount.Equal(amount))
	suite.True(txn.IsExpense())
	suite.False(txn.Date.IsZero())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestAddTransaction_ZeroAmountRejected() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{Text: "Nothing", Amount: decimal.Zero}

	_, err := suite.service.AddTransaction(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestAddTransaction_SkipBalance() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		Text:        "Imported row",
		Amount:      decimal.NewFromInt(-90),
		AccountID:   &suite.cashAccount.AccountID,
		SkipBalance: true,
	}

	suite.expectFindAccount(suite.cashAccount)
	suite.mockTxnRepo.On("SaveTransactions", ctx, mock.AnythingOfType("[]domain.Transaction"),
		deltasMatch(map[string]decimal.Decimal{})).Return(nil).Once()

	_, err := suite.service.AddTransaction(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestAddTransaction_OtherUsersAccountForbidden() {
	ctx := context.Background()
	other := suite.cashAccount
	other.UserID = uuid.NewString()
	suite.expectFindAccount(other)

	req := dto.CreateTransactionRequest{
		Text:      "Sneaky",
		Amount:    decimal.NewFromInt(-10),
		AccountID: &other.AccountID,
	}

	_, err := suite.service.AddTransaction(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_RevertsOldAppliesNew() {
	ctx := context.Background()
	old := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        suite.userID,
		Text:          "Groceries",
		Amount:        decimal.NewFromInt(-250),
		AccountID:     &suite.cashAccount.AccountID,
	}
	newAmount := decimal.NewFromInt(-300)

	suite.mockTxnRepo.On("FindTransactionByID", ctx, old.TransactionID).Return(&old, nil).Once()
	// Same account: revert -250 and apply -300 merge into a net -50.
	suite.mockTxnRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction"),
		deltasMatch(map[string]decimal.Decimal{suite.cashAccount.AccountID: decimal.NewFromInt(-50)})).Return(nil).Once()

	updated, err := suite.service.UpdateTransaction(ctx, suite.userID, old.TransactionID, dto.UpdateTransactionRequest{
		Amount: &newAmount,
	})

	suite.Require().NoError(err)
	suite.True(updated.Amount.Equal(newAmount))
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_AccountMoveSplitsDeltas() {
	ctx := context.Background()
	old := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        suite.userID,
		Text:          "Dinner",
		Amount:        decimal.NewFromInt(-120),
		AccountID:     &suite.cashAccount.AccountID,
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, old.TransactionID).Return(&old, nil).Once()
	suite.expectFindAccount(suite.bankAccount)
	suite.mockTxnRepo.On("UpdateTransaction", ctx, mock.AnythingOfType("domain.Transaction"),
		deltasMatch(map[string]decimal.Decimal{
			suite.cashAccount.AccountID: decimal.NewFromInt(120),
			suite.bankAccount.AccountID: decimal.NewFromInt(-120),
		})).Return(nil).Once()

	_, err := suite.service.UpdateTransaction(ctx, suite.userID, old.TransactionID, dto.UpdateTransactionRequest{
		AccountID: &suite.bankAccount.AccountID,
	})

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_TransferLegRejected() {
	ctx := context.Background()
	groupID := uuid.NewString()
	leg := domain.Transaction{
		TransactionID:   uuid.NewString(),
		UserID:          suite.userID,
		Amount:          decimal.NewFromInt(-100),
		AccountID:       &suite.cashAccount.AccountID,
		TransferGroupID: &groupID,
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, leg.TransactionID).Return(&leg, nil).Once()

	newText := "edited"
	_, err := suite.service.UpdateTransaction(ctx, suite.userID, leg.TransactionID, dto.UpdateTransactionRequest{Text: &newText})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_RevertsBalance() {
	ctx := context.Background()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        suite.userID,
		Amount:        decimal.NewFromInt(-80),
		AccountID:     &suite.cashAccount.AccountID,
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, txn.TransactionID).Return(&txn, nil).Once()
	suite.mockTxnRepo.On("DeleteTransactions", ctx, []string{txn.TransactionID},
		deltasMatch(map[string]decimal.Decimal{suite.cashAccount.AccountID: decimal.NewFromInt(80)})).Return(nil).Once()

	err := suite.service.DeleteTransaction(ctx, suite.userID, txn.TransactionID)

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_TransferRemovesBothLegs() {
	ctx := context.Background()
	groupID := uuid.NewString()
	amount := decimal.NewFromInt(200)
	sourceLeg := domain.Transaction{
		TransactionID:   uuid.NewString(),
		UserID:          suite.userID,
		Amount:          amount.Neg(),
		AccountID:       &suite.bankAccount.AccountID,
		TransferGroupID: &groupID,
	}
	destLeg := domain.Transaction{
		TransactionID:   uuid.NewString(),
		UserID:          suite.userID,
		Amount:          amount,
		AccountID:       &suite.cashAccount.AccountID,
		TransferGroupID: &groupID,
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, sourceLeg.TransactionID).Return(&sourceLeg, nil).Once()
	suite.mockTxnRepo.On("FindTransactionsByGroupID", ctx, groupID).Return([]domain.Transaction{sourceLeg, destLeg}, nil).Once()
	suite.mockTxnRepo.On("DeleteTransactions", ctx, []string{sourceLeg.TransactionID, destLeg.TransactionID},
		deltasMatch(map[string]decimal.Decimal{
			suite.bankAccount.AccountID: amount,
			suite.cashAccount.AccountID: amount.Neg(),
		})).Return(nil).Once()

	err := suite.service.DeleteTransaction(ctx, suite.userID, sourceLeg.TransactionID)

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestTransfer_EmitsLinkedPair() {
	ctx := context.Background()
	amount := decimal.NewFromInt(300)
	suite.expectFindAccount(suite.bankAccount)
	suite.expectFindAccount(suite.cashAccount)
	suite.mockTxnRepo.On("SaveTransactions", ctx, mock.AnythingOfType("[]domain.Transaction"),
		deltasMatch(map[string]decimal.Decimal{
			suite.bankAccount.AccountID: amount.Neg(),
			suite.cashAccount.AccountID: amount,
		})).Return(nil).Once()

	legs, err := suite.service.Transfer(ctx, suite.userID, dto.TransferRequest{
		SourceAccountID:      suite.bankAccount.AccountID,
		DestinationAccountID: suite.cashAccount.AccountID,
		Amount:               amount,
	})

	suite.Require().NoError(err)
	suite.Require().Len(legs, 2)
	suite.True(legs[0].Amount.Equal(amount.Neg()))
	suite.True(legs[1].Amount.Equal(amount))
	suite.Require().NotNil(legs[0].TransferGroupID)
	suite.Require().NotNil(legs[1].TransferGroupID)
	suite.Equal(*legs[0].TransferGroupID, *legs[1].TransferGroupID)
	suite.Equal(domain.CategoryTransfer, legs[0].Category)
	suite.Equal(domain.CategoryTransfer, legs[1].Category)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestTransfer_SameAccountRejected() {
	ctx := context.Background()
	suite.expectFindAccount(suite.bankAccount)

	_, err := suite.service.Transfer(ctx, suite.userID, dto.TransferRequest{
		SourceAccountID:      suite.bankAccount.AccountID,
		DestinationAccountID: suite.bankAccount.AccountID,
		Amount:               decimal.NewFromInt(50),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestTransfer_InsufficientFunds() {
	ctx := context.Background()
	suite.expectFindAccount(suite.cashAccount)
	suite.expectFindAccount(suite.bankAccount)

	_, err := suite.service.Transfer(ctx, suite.userID, dto.TransferRequest{
		SourceAccountID:      suite.cashAccount.AccountID,
		DestinationAccountID: suite.bankAccount.AccountID,
		Amount:               decimal.NewFromInt(1500),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestTransfer_CreditCardSourceRejected() {
	ctx := context.Background()
	suite.expectFindAccount(suite.creditCard)
	suite.expectFindAccount(suite.bankAccount)

	_, err := suite.service.Transfer(ctx, suite.userID, dto.TransferRequest{
		SourceAccountID:      suite.creditCard.AccountID,
		DestinationAccountID: suite.bankAccount.AccountID,
		Amount:               decimal.NewFromInt(100),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestTransfer_CardOverpaymentRejected() {
	ctx := context.Background()
	// Limit 1000, available 700: outstanding debt is 300.
	suite.expectFindAccount(suite.bankAccount)
	suite.expectFindAccount(suite.creditCard)

	_, err := suite.service.Transfer(ctx, suite.userID, dto.TransferRequest{
		SourceAccountID:      suite.bankAccount.AccountID,
		DestinationAccountID: suite.creditCard.AccountID,
		Amount:               decimal.NewFromInt(500),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransactions", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestTransfer_CardPaymentWithinDebtAllowed() {
	ctx := context.Background()
	amount := decimal.NewFromInt(300)
	suite.expectFindAccount(suite.bankAccount)
	suite.expectFindAccount(suite.creditCard)
	suite.mockTxnRepo.On("SaveTransactions", ctx, mock.AnythingOfType("[]domain.Transaction"),
		deltasMatch(map[string]decimal.Decimal{
			suite.bankAccount.AccountID: amount.Neg(),
			suite.creditCard.AccountID:  amount,
		})).Return(nil).Once()

	legs, err := suite.service.Transfer(ctx, suite.userID, dto.TransferRequest{
		SourceAccountID:      suite.bankAccount.AccountID,
		DestinationAccountID: suite.creditCard.AccountID,
		Amount:               amount,
	})

	suite.Require().NoError(err)
	suite.Len(legs, 2)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestTransfer_InvestmentToBankMarksReturn() {
	ctx := context.Background()
	amount := decimal.NewFromInt(1000)
	suite.expectFindAccount(suite.investment)
	suite.expectFindAccount(suite.bankAccount)
	suite.mockTxnRepo.On("SaveTransactions", ctx, mock.AnythingOfType("[]domain.Transaction"), mock.Anything).Return(nil).Once()

	legs, err := suite.service.Transfer(ctx, suite.userID, dto.TransferRequest{
		SourceAccountID:      suite.investment.AccountID,
		DestinationAccountID: suite.bankAccount.AccountID,
		Amount:               amount,
	})

	suite.Require().NoError(err)
	suite.Require().Len(legs, 2)
	suite.Equal(domain.CategoryTransfer, legs[0].Category)
	suite.Equal(domain.CategoryInvestmentReturn, legs[1].Category)
}

func (suite *TransactionServiceTestSuite) TestSuggestTransferAmount_CardDebt() {
	ctx := context.Background()
	suite.expectFindAccount(suite.creditCard)

	amount, err := suite.service.SuggestTransferAmount(ctx, suite.userID, suite.creditCard.AccountID)

	suite.Require().NoError(err)
	suite.True(amount.Equal(decimal.NewFromInt(300)))
}

func (suite *TransactionServiceTestSuite) TestSuggestTransferAmount_NonCardZero() {
	ctx := context.Background()
	suite.expectFindAccount(suite.bankAccount)

	amount, err := suite.service.SuggestTransferAmount(ctx, suite.userID, suite.bankAccount.AccountID)

	suite.Require().NoError(err)
	suite.True(amount.IsZero())
}

func TestTransactionService(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
