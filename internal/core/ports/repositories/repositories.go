package repositories

// RepositoryProvider bundles every repository implementation so the service
// container can be wired from one value.
type RepositoryProvider struct {
	AccountRepo      AccountRepository
	TransactionRepo  TransactionRepository
	SubscriptionRepo SubscriptionRepository
	CategoryRepo     CategoryRepository
	BudgetRepo       BudgetRepository
	UserRepo         UserRepository
}
