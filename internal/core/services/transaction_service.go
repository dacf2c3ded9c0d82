package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/apperrors"
	"github.com/spendlog/spendlog/internal/core/domain"
	portsrepo "github.com/spendlog/spendlog/internal/core/ports/repositories"
	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/dto"
	"github.com/spendlog/spendlog/internal/platform/observability"
)

// transactionService keeps every account's stored balance equal to its
// opening balance plus the signed sum of live transactions referencing it.
// Every mutator reverts the old balance effect before applying the new one:
// an edit is (revert old, apply new), never (diff and adjust).
type transactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepository
	accountRepo     portsrepo.AccountRepository
	metrics         *observability.Metrics
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(transactionRepo portsrepo.TransactionRepository, accountRepo portsrepo.AccountRepository, metrics *observability.Metrics) portssvc.TransactionSvcFacade {
	return &transactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		metrics:         metrics,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// accumulateDelta records a balance change for one account, merging repeated
// changes to the same account.
func accumulateDelta(deltas map[string]decimal.Decimal, accountID string, delta decimal.Decimal) {
	deltas[accountID] = deltas[accountID].Add(delta)
}

// resolveOwnedAccount fetches an account and enforces ownership.
func (s *transactionService) resolveOwnedAccount(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return account, nil
}

// AddTransaction records a money movement and applies its balance effect.
func (s *transactionService) AddTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: transaction amount cannot be zero", apperrors.ErrValidation)
	}

	if req.AccountID != nil && *req.AccountID != "" {
		if _, err := s.resolveOwnedAccount(ctx, userID, *req.AccountID); err != nil {
			return nil, err
		}
	} else {
		req.AccountID = nil
	}

	now := time.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}

	txn := domain.Transaction{
		TransactionID:  uuid.NewString(),
		UserID:         userID,
		Text:           req.Text,
		Amount:         req.Amount,
		Category:       req.Category,
		AccountID:      req.AccountID,
		Date:           date,
		SubscriptionID: req.SubscriptionID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	deltas := map[string]decimal.Decimal{}
	if txn.AffectsBalance() && !req.SkipBalance {
		accumulateDelta(deltas, *txn.AccountID, txn.Amount)
	}

	if err := s.transactionRepo.SaveTransactions(ctx, []domain.Transaction{txn}, deltas); err != nil {
		s.LogError(ctx, err, "failed to save transaction", "transaction_text", req.Text)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TransactionsWritten.Inc()
	}
	s.LogInfo(ctx, "transaction recorded", "transaction_id", txn.TransactionID, "amount", txn.Amount.String())
	return &txn, nil
}

// GetTransactionByID fetches one transaction, enforcing ownership.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID string, transactionID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return txn, nil
}

// ListTransactions returns one page of the user's transaction log.
func (s *transactionService) ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	txns, nextToken, err := s.transactionRepo.ListTransactions(ctx, userID, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

// UpdateTransaction edits a transaction: the old balance effect is reverted,
// then the new one applied. Transfer legs cannot be edited, only deleted.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID string, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	old, err := s.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if old.TransferGroupID != nil {
		return nil, fmt.Errorf("%w: transfer legs cannot be edited, delete the transfer instead", apperrors.ErrValidation)
	}

	updated := *old
	if req.Text != nil {
		updated.Text = *req.Text
	}
	if req.Amount != nil {
		if req.Amount.IsZero() {
			return nil, fmt.Errorf("%w: transaction amount cannot be zero", apperrors.ErrValidation)
		}
		updated.Amount = *req.Amount
	}
	if req.Category != nil {
		updated.Category = *req.Category
	}
	if req.Date != nil {
		updated.Date = *req.Date
	}
	if req.AccountID != nil {
		if *req.AccountID == "" {
			updated.AccountID = nil
		} else {
			if _, err := s.resolveOwnedAccount(ctx, userID, *req.AccountID); err != nil {
				return nil, err
			}
			updated.AccountID = req.AccountID
		}
	}

	now := time.Now()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = userID

	// Revert the old effect, apply the new one. When the account is unchanged
	// the two merge into a single net delta against it.
	deltas := map[string]decimal.Decimal{}
	if old.AffectsBalance() {
		accumulateDelta(deltas, *old.AccountID, old.Amount.Neg())
	}
	if updated.AffectsBalance() {
		accumulateDelta(deltas, *updated.AccountID, updated.Amount)
	}

	if err := s.transactionRepo.UpdateTransaction(ctx, updated, deltas); err != nil {
		s.LogError(ctx, err, "failed to update transaction", "transaction_id", transactionID)
		return nil, err
	}

	s.LogInfo(ctx, "transaction updated", "transaction_id", transactionID)
	return &updated, nil
}

// DeleteTransaction removes a transaction and reverts its balance effect.
// When the transaction belongs to a transfer group, every leg in the group is
// reverted and deleted together.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID string, transactionID string) error {
	txn, err := s.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return err
	}

	toDelete := []domain.Transaction{*txn}
	if txn.TransferGroupID != nil {
		group, err := s.transactionRepo.FindTransactionsByGroupID(ctx, *txn.TransferGroupID)
		if err != nil {
			return err
		}
		toDelete = group
	}

	ids := make([]string, 0, len(toDelete))
	deltas := map[string]decimal.Decimal{}
	for _, t := range toDelete {
		ids = append(ids, t.TransactionID)
		if t.AffectsBalance() {
			accumulateDelta(deltas, *t.AccountID, t.Amount.Neg())
		}
	}

	if err := s.transactionRepo.DeleteTransactions(ctx, ids, deltas); err != nil {
		s.LogError(ctx, err, "failed to delete transactions", "transaction_id", transactionID)
		return err
	}

	s.LogInfo(ctx, "transactions deleted", "count", len(ids))
	return nil
}

// validateTransfer applies every transfer precondition before any mutation.
func validateTransfer(source, dest *domain.Account, amount decimal.Decimal) error {
	if source.AccountID == dest.AccountID {
		return fmt.Errorf("%w: source and destination accounts must differ", apperrors.ErrValidation)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}
	if source.AccountType == domain.CreditCard && dest.AccountType != domain.CreditCard {
		return fmt.Errorf("%w: transfers from a credit card are not allowed", apperrors.ErrValidation)
	}
	if source.AccountType != domain.CreditCard && source.Balance.LessThan(amount) {
		return fmt.Errorf("%w: source account %q has insufficient funds", apperrors.ErrInsufficientFunds, source.Name)
	}
	if dest.AccountType == domain.CreditCard {
		debt := dest.Debt()
		if amount.GreaterThan(debt) {
			return fmt.Errorf("%w: payment of %s exceeds card debt of %s", apperrors.ErrValidation, amount.String(), debt.String())
		}
	}
	return nil
}

// transferLegCategories returns the category labels for the two legs. An
// Investment -> Bank/Cash transfer marks the inflow as realized proceeds.
func transferLegCategories(source, dest *domain.Account) (string, string) {
	destCategory := domain.CategoryTransfer
	if source.AccountType == domain.Investment &&
		(dest.AccountType == domain.Bank || dest.AccountType == domain.Cash) {
		destCategory = domain.CategoryInvestmentReturn
	}
	return domain.CategoryTransfer, destCategory
}

// Transfer moves an amount between two accounts, emitting a linked pair of
// transactions with amounts -M and +M sharing one transfer group.
func (s *transactionService) Transfer(ctx context.Context, userID string, req dto.TransferRequest) ([]domain.Transaction, error) {
	source, err := s.resolveOwnedAccount(ctx, userID, req.SourceAccountID)
	if err != nil {
		return nil, fmt.Errorf("source account: %w", err)
	}
	dest, err := s.resolveOwnedAccount(ctx, userID, req.DestinationAccountID)
	if err != nil {
		return nil, fmt.Errorf("destination account: %w", err)
	}

	if err := validateTransfer(source, dest, req.Amount); err != nil {
		return nil, err
	}

	now := time.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	text := req.Text
	if text == "" {
		text = fmt.Sprintf("Transfer: %s -> %s", source.Name, dest.Name)
	}

	groupID := uuid.NewString()
	sourceCategory, destCategory := transferLegCategories(source, dest)
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	legs := []domain.Transaction{
		{
			TransactionID:   uuid.NewString(),
			UserID:          userID,
			Text:            text,
			Amount:          req.Amount.Neg(),
			Category:        sourceCategory,
			AccountID:       &source.AccountID,
			Date:            date,
			TransferGroupID: &groupID,
			AuditFields:     audit,
		},
		{
			TransactionID:   uuid.NewString(),
			UserID:          userID,
			Text:            text,
			Amount:          req.Amount,
			Category:        destCategory,
			AccountID:       &dest.AccountID,
			Date:            date,
			TransferGroupID: &groupID,
			AuditFields:     audit,
		},
	}

	deltas := map[string]decimal.Decimal{}
	accumulateDelta(deltas, source.AccountID, req.Amount.Neg())
	accumulateDelta(deltas, dest.AccountID, req.Amount)

	if err := s.transactionRepo.SaveTransactions(ctx, legs, deltas); err != nil {
		s.LogError(ctx, err, "failed to save transfer", "transfer_group_id", groupID)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TransactionsWritten.Add(2)
	}
	s.LogInfo(ctx, "transfer completed", "transfer_group_id", groupID, "amount", req.Amount.String())
	return legs, nil
}

// SuggestTransferAmount returns the destination's outstanding debt for credit
// card destinations, as a payment auto-fill. Zero for everything else.
func (s *transactionService) SuggestTransferAmount(ctx context.Context, userID string, destinationAccountID string) (decimal.Decimal, error) {
	dest, err := s.resolveOwnedAccount(ctx, userID, destinationAccountID)
	if err != nil {
		return decimal.Zero, err
	}
	if dest.AccountType != domain.CreditCard {
		return decimal.Zero, nil
	}
	debt := dest.Debt()
	if debt.IsNegative() {
		return decimal.Zero, nil
	}
	return debt, nil
}
