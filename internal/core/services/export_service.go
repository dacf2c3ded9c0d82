package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spendlog/spendlog/internal/apperrors"
	"github.com/spendlog/spendlog/internal/core/domain"
	portsrepo "github.com/spendlog/spendlog/internal/core/ports/repositories"
	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/dto"
	"github.com/spendlog/spendlog/internal/utils"
)

// exportService implements CSV export and the signed JSON backup round trip.
type exportService struct {
	BaseService
	transactionRepo  portsrepo.TransactionRepository
	accountRepo      portsrepo.AccountRepository
	categoryRepo     portsrepo.CategoryRepository
	budgetRepo       portsrepo.BudgetRepository
	subscriptionRepo portsrepo.SubscriptionRepository
	userRepo         portsrepo.UserRepository
	backupSecret     string
}

// NewExportService creates a new export service.
func NewExportService(
	repos *portsrepo.RepositoryProvider,
	backupSecret string,
) portssvc.ExportSvcFacade {
	return &exportService{
		transactionRepo:  repos.TransactionRepo,
		accountRepo:      repos.AccountRepo,
		categoryRepo:     repos.CategoryRepo,
		budgetRepo:       repos.BudgetRepo,
		subscriptionRepo: repos.SubscriptionRepo,
		userRepo:         repos.UserRepo,
		backupSecret:     backupSecret,
	}
}

var _ portssvc.ExportSvcFacade = (*exportService)(nil)

var csvHeader = []string{"ID", "Date", "Description", "Category", "Amount", "Type"}

// ExportTransactionsCSV renders the user's full ledger as CSV, newest first.
// Amounts are written as absolute values; the Type column carries the sign.
func (s *exportService) ExportTransactionsCSV(ctx context.Context, userID string) ([]byte, error) {
	txns, err := s.transactionRepo.ListAllTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, txn := range txns {
		flow := "Income"
		if txn.IsExpense() {
			flow = "Expense"
		}
		record := []string{
			txn.TransactionID,
			txn.Date.Format(time.RFC3339),
			txn.Text,
			txn.Category,
			txn.Amount.Abs().String(),
			flow,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) collectBackupData(ctx context.Context, userID string) (*dto.BackupData, error) {
	txns, err := s.transactionRepo.ListAllTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgetRepo.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}
	subs, err := s.subscriptionRepo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.BackupData{
		Transactions:  txns,
		Accounts:      accounts,
		Categories:    categories,
		Budgets:       budgets,
		Subscriptions: subs,
	}, nil
}

// ExportBackup produces a signed full-account snapshot.
func (s *exportService) ExportBackup(ctx context.Context, userID string) (*dto.BackupFile, error) {
	data, err := s.collectBackupData(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	backupUser := dto.BackupUser{
		Email:       user.Email,
		Plan:        user.Plan,
		TrialEndsAt: user.TrialEndsAt,
		IsPro:       user.IsPro(),
	}

	signature, err := utils.SignBackupPayload(struct {
		Data dto.BackupData `json:"data"`
		User dto.BackupUser `json:"user"`
	}{*data, backupUser}, s.backupSecret, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign backup: %w", err)
	}

	return &dto.BackupFile{
		Data: *data,
		User: backupUser,
		Meta: dto.BackupMeta{
			Version:    dto.BackupVersion,
			ExportedAt: time.Now(),
		},
		Signature: signature,
	}, nil
}

// ImportBackup appends a snapshot's records to the importing user's data
// under fresh IDs. Stored balances travel with the imported accounts, so the
// transaction rows are written without balance deltas; replaying them would
// double-count. Plan metadata is applied only when the signature verifies
// against the exporting user's email.
func (s *exportService) ImportBackup(ctx context.Context, userID string, backup dto.BackupFile) (*dto.ImportResult, error) {
	logger := s.GetLogger(ctx)

	if backup.Meta.Version != dto.BackupVersion {
		return nil, fmt.Errorf("%w: unsupported backup version %q", apperrors.ErrValidation, backup.Meta.Version)
	}

	verified, err := utils.VerifyBackupSignature(struct {
		Data dto.BackupData `json:"data"`
		User dto.BackupUser `json:"user"`
	}{backup.Data, backup.User}, s.backupSecret, backup.User.Email, backup.Signature)
	if err != nil {
		return nil, fmt.Errorf("failed to verify backup signature: %w", err)
	}
	if !verified {
		logger.Warn("Backup signature did not verify, importing data without plan metadata")
	}

	now := time.Now()
	result := &dto.ImportResult{SignatureVerified: verified}

	// Accounts first so transactions and subscriptions can be rewired to
	// the freshly minted IDs.
	accountIDMap := make(map[string]string, len(backup.Data.Accounts))
	for _, acc := range backup.Data.Accounts {
		newID := uuid.NewString()
		accountIDMap[acc.AccountID] = newID
		acc.AccountID = newID
		acc.UserID = userID
		acc.CreatedAt = now
		acc.CreatedBy = userID
		acc.LastUpdatedAt = now
		acc.LastUpdatedBy = userID
		if err := s.accountRepo.SaveAccount(ctx, acc); err != nil {
			return nil, fmt.Errorf("failed to import account %s: %w", acc.Name, err)
		}
		result.Accounts++
	}

	for _, cat := range backup.Data.Categories {
		cat.CategoryID = uuid.NewString()
		cat.UserID = userID
		cat.CreatedAt = now
		cat.CreatedBy = userID
		cat.LastUpdatedAt = now
		cat.LastUpdatedBy = userID
		if err := s.categoryRepo.SaveCategory(ctx, cat); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				continue
			}
			return nil, fmt.Errorf("failed to import category %s: %w", cat.Name, err)
		}
		result.Categories++
	}

	for _, b := range backup.Data.Budgets {
		b.BudgetID = uuid.NewString()
		b.UserID = userID
		b.CreatedAt = now
		b.CreatedBy = userID
		b.LastUpdatedAt = now
		b.LastUpdatedBy = userID
		if err := s.budgetRepo.SaveBudget(ctx, b); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				continue
			}
			return nil, fmt.Errorf("failed to import budget for %s: %w", b.Category, err)
		}
		result.Budgets++
	}

	subscriptionIDMap := make(map[string]string, len(backup.Data.Subscriptions))
	for _, sub := range backup.Data.Subscriptions {
		newID := uuid.NewString()
		subscriptionIDMap[sub.SubscriptionID] = newID
		sub.SubscriptionID = newID
		sub.UserID = userID
		sub.WalletID = accountIDMap[sub.WalletID]
		if sub.WalletID == "" {
			// Wallet no longer resolvable; keep the record but drop auto-pay.
			sub.AutoPay = false
		}
		sub.CreatedAt = now
		sub.CreatedBy = userID
		sub.LastUpdatedAt = now
		sub.LastUpdatedBy = userID
		if err := s.subscriptionRepo.SaveSubscription(ctx, sub); err != nil {
			return nil, fmt.Errorf("failed to import subscription %s: %w", sub.Name, err)
		}
		result.Subscriptions++
	}

	if len(backup.Data.Transactions) > 0 {
		transferGroupIDMap := map[string]string{}
		txns := make([]domain.Transaction, 0, len(backup.Data.Transactions))
		for _, txn := range backup.Data.Transactions {
			txn.TransactionID = uuid.NewString()
			txn.UserID = userID
			if txn.AccountID != nil {
				if mapped, ok := accountIDMap[*txn.AccountID]; ok {
					txn.AccountID = &mapped
				} else {
					txn.AccountID = nil
				}
			}
			if txn.SubscriptionID != nil {
				if mapped, ok := subscriptionIDMap[*txn.SubscriptionID]; ok {
					txn.SubscriptionID = &mapped
				} else {
					txn.SubscriptionID = nil
				}
			}
			if txn.TransferGroupID != nil {
				mapped, ok := transferGroupIDMap[*txn.TransferGroupID]
				if !ok {
					mapped = uuid.NewString()
					transferGroupIDMap[*txn.TransferGroupID] = mapped
				}
				txn.TransferGroupID = &mapped
			}
			txn.CreatedAt = now
			txn.CreatedBy = userID
			txn.LastUpdatedAt = now
			txn.LastUpdatedBy = userID
			txns = append(txns, txn)
		}
		if err := s.transactionRepo.SaveTransactions(ctx, txns, nil); err != nil {
			return nil, fmt.Errorf("failed to import transactions: %w", err)
		}
		result.Transactions = len(txns)
	}

	if verified && backup.User.Plan == domain.PlanPro {
		if err := s.userRepo.UpdatePlan(ctx, userID, backup.User.Plan, backup.User.TrialEndsAt, now); err != nil {
			logger.Error("Failed to apply plan metadata from backup", "error", err)
		} else {
			result.PlanApplied = true
		}
	}

	logger.Info("Backup import finished",
		"accounts", result.Accounts,
		"transactions", result.Transactions,
		"signatureVerified", verified,
		"planApplied", result.PlanApplied)
	return result, nil
}
