package services

// ServiceProvider bundles every service facade for injection into the
// handler layer.
type ServiceProvider struct {
	AccountSvc      AccountSvcFacade
	TransactionSvc  TransactionSvcFacade
	SubscriptionSvc SubscriptionSvcFacade
	CategorySvc     CategorySvcFacade
	BudgetSvc       BudgetSvcFacade
	AnalyticsSvc    AnalyticsSvcFacade
	ExportSvc       ExportSvcFacade
	UserSvc         UserSvcFacade
	AuthSvc         AuthSvcFacade
}
