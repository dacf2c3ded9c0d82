package repositories

import (
	"context"
	"time"

	"github.com/spendlog/spendlog/internal/core/domain"
)

// SubscriptionRepository defines persistence operations for subscriptions.
type SubscriptionRepository interface {
	SaveSubscription(ctx context.Context, sub domain.Subscription) error
	FindSubscriptionByID(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, userID string) ([]domain.Subscription, error)
	UpdateSubscription(ctx context.Context, sub domain.Subscription) error
	DeleteSubscription(ctx context.Context, subscriptionID string) error
	// UpdateNextBillingDate persists the advanced due date after a billing pass.
	UpdateNextBillingDate(ctx context.Context, subscriptionID string, next time.Time, userID string, now time.Time) error
	// ListDueAutoPayUserIDs returns the distinct owners of auto-pay
	// subscriptions whose next billing date is on or before asOf.
	ListDueAutoPayUserIDs(ctx context.Context, asOf time.Time) ([]string, error)
}
