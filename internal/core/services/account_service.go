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
)

// accountService implements the account service facade.
type accountService struct {
	BaseService
	accountRepo     portsrepo.AccountRepository
	transactionRepo portsrepo.TransactionRepository
}

// AccountServiceOption configures optional dependencies of the account service.
type AccountServiceOption func(*accountService)

// WithTransactionRepository wires the transaction repository used by the
// balance adjustment flow to record the difference transaction.
func WithTransactionRepository(repo portsrepo.TransactionRepository) AccountServiceOption {
	return func(s *accountService) {
		s.transactionRepo = repo
	}
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepository, opts ...AccountServiceOption) portssvc.AccountSvcFacade {
	s := &accountService{
		accountRepo: accountRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// defaultAccounts are seeded for a user whose account list is empty.
var defaultAccounts = []struct {
	Name string
	Type domain.AccountType
}{
	{Name: "Cash", Type: domain.Cash},
	{Name: "Bank", Type: domain.Bank},
}

// CreateAccount validates and persists a new wallet.
func (s *accountService) CreateAccount(ctx context.Context, userID string, req dto.CreateAccountRequest) (*domain.Account, error) {
	if !domain.ValidAccountType(string(req.AccountType)) {
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, req.AccountType)
	}
	if req.AccountType == domain.CreditCard {
		if req.CreditLimit == nil || req.CreditLimit.IsNegative() {
			return nil, fmt.Errorf("%w: credit card accounts require a non-negative credit limit", apperrors.ErrValidation)
		}
		if req.Balance.GreaterThan(*req.CreditLimit) {
			return nil, fmt.Errorf("%w: available credit cannot exceed the credit limit", apperrors.ErrValidation)
		}
	}

	now := time.Now()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		UserID:       userID,
		Name:         req.Name,
		AccountType:  req.AccountType,
		Balance:      req.Balance,
		CreditLimit:  req.CreditLimit,
		InterestRate: req.InterestRate,
		LoanTotal:    req.LoanTotal,
		LoanPayment:  req.LoanPayment,
		DownPayment:  req.DownPayment,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "failed to create account", "account_name", req.Name)
		return nil, err
	}

	s.LogInfo(ctx, "account created", "account_id", account.AccountID, "account_type", string(account.AccountType))
	return &account, nil
}

// GetAccountByID fetches one account, enforcing ownership.
func (s *accountService) GetAccountByID(ctx context.Context, userID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return account, nil
}

// ListAccounts returns every wallet the user owns.
func (s *accountService) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx, userID)
}

// UpdateAccount applies the provided fields to an existing wallet. Balance is
// untouchable here.
func (s *accountService) UpdateAccount(ctx context.Context, userID string, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.CreditLimit != nil {
		account.CreditLimit = req.CreditLimit
	}
	if req.InterestRate != nil {
		account.InterestRate = req.InterestRate
	}
	if req.LoanTotal != nil {
		account.LoanTotal = req.LoanTotal
	}
	if req.LoanPayment != nil {
		account.LoanPayment = req.LoanPayment
	}
	if req.DownPayment != nil {
		account.DownPayment = req.DownPayment
	}
	account.LastUpdatedAt = time.Now()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "failed to update account", "account_id", accountID)
		return nil, err
	}
	return account, nil
}

// DeleteAccount removes the wallet. Transactions referencing it are left in
// place as orphans and stop affecting any balance.
func (s *accountService) DeleteAccount(ctx context.Context, userID string, accountID string) error {
	if _, err := s.GetAccountByID(ctx, userID, accountID); err != nil {
		return err
	}
	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		s.LogError(ctx, err, "failed to delete account", "account_id", accountID)
		return err
	}
	s.LogInfo(ctx, "account deleted", "account_id", accountID)
	return nil
}

// AdjustBalance sets the balance to the target value directly and optionally
// records one income/expense transaction for the difference. The recorded
// transaction deliberately carries no balance effect of its own; the balance
// was already set.
func (s *accountService) AdjustBalance(ctx context.Context, userID string, accountID string, req dto.AdjustBalanceRequest) (*domain.Account, *domain.Transaction, error) {
	account, err := s.GetAccountByID(ctx, userID, accountID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	diff := req.Balance.Sub(account.Balance)

	if err := s.accountRepo.SetBalance(ctx, accountID, req.Balance, userID, now); err != nil {
		s.LogError(ctx, err, "failed to set balance", "account_id", accountID)
		return nil, nil, err
	}
	account.Balance = req.Balance
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID

	var recorded *domain.Transaction
	if req.RecordTransaction && !diff.IsZero() {
		if s.transactionRepo == nil {
			return nil, nil, fmt.Errorf("%w: transaction recording not available", apperrors.ErrInternal)
		}
		txn := domain.Transaction{
			TransactionID: uuid.NewString(),
			UserID:        userID,
			Text:          fmt.Sprintf("Balance adjustment: %s", account.Name),
			Amount:        diff,
			Category:      domain.CategoryBalanceAdjust,
			AccountID:     &accountID,
			Date:          now,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.transactionRepo.SaveTransactions(ctx, []domain.Transaction{txn}, nil); err != nil {
			s.LogError(ctx, err, "failed to record adjustment transaction", "account_id", accountID)
			return nil, nil, err
		}
		recorded = &txn
	}

	s.LogInfo(ctx, "balance adjusted", "account_id", accountID, "difference", diff.String())
	return account, recorded, nil
}

// EnsureDefaultAccounts seeds the starter wallets for a user with none.
func (s *accountService) EnsureDefaultAccounts(ctx context.Context, userID string) error {
	count, err := s.accountRepo.CountAccounts(ctx, userID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	for _, def := range defaultAccounts {
		account := domain.Account{
			AccountID:   uuid.NewString(),
			UserID:      userID,
			Name:        def.Name,
			AccountType: def.Type,
			Balance:     decimal.Zero,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to seed default account %q: %w", def.Name, err)
		}
	}

	s.LogInfo(ctx, "default accounts seeded", "user_id", userID)
	return nil
}
