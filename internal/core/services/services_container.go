package services

import (
	"log/slog"

	"github.com/spendlog/spendlog/internal/core/ports/repositories"
	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/notifier"
	"github.com/spendlog/spendlog/internal/platform/config"
	"github.com/spendlog/spendlog/internal/platform/observability"
)

// NewServiceContainer wires every service facade with its dependencies.
func NewServiceContainer(cfg *config.Config, repos *repositories.RepositoryProvider, metrics *observability.Metrics, logger *slog.Logger) *portssvc.ServiceProvider {
	container := &portssvc.ServiceProvider{}

	// Transaction service first; accounts and subscriptions both route
	// balance-affecting writes through it.
	container.TransactionSvc = NewTransactionService(repos.TransactionRepo, repos.AccountRepo, metrics)

	container.AccountSvc = NewAccountService(
		repos.AccountRepo,
		WithTransactionRepository(repos.TransactionRepo),
	)

	billingNotifier := notifier.NewBillingNotifier(cfg.BillingWebhookURL, logger, metrics)
	container.SubscriptionSvc = NewSubscriptionService(
		repos.SubscriptionRepo,
		repos.AccountRepo,
		container.TransactionSvc,
		billingNotifier,
		metrics,
	)

	container.CategorySvc = NewCategoryService(repos.CategoryRepo)
	container.BudgetSvc = NewBudgetService(repos.BudgetRepo)
	container.AnalyticsSvc = NewAnalyticsService(
		repos.TransactionRepo,
		repos.AccountRepo,
		repos.BudgetRepo,
		repos.SubscriptionRepo,
	)
	container.ExportSvc = NewExportService(repos, cfg.BackupSecret)
	container.UserSvc = NewUserService(repos.UserRepo)
	container.AuthSvc = NewAuthService(cfg, repos.UserRepo, container.AccountSvc)

	return container
}
