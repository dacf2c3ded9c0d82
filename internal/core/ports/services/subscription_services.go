package services

import (
	"context"
	"time"

	"github.com/spendlog/spendlog/internal/core/domain"
	"github.com/spendlog/spendlog/internal/dto"
)

// SubscriptionSvcFacade defines recurring obligation operations, including
// the auto-pay sweep that bills overdue cycles.
type SubscriptionSvcFacade interface {
	CreateSubscription(ctx context.Context, userID string, req dto.CreateSubscriptionRequest) (*domain.Subscription, error)
	GetSubscriptionByID(ctx context.Context, userID string, subscriptionID string) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, userID string) ([]domain.Subscription, error)
	UpdateSubscription(ctx context.Context, userID string, subscriptionID string, req dto.UpdateSubscriptionRequest) (*domain.Subscription, error)
	DeleteSubscription(ctx context.Context, userID string, subscriptionID string) error
	// MarkPaid records one billing cycle manually and advances the next
	// billing date by exactly one cycle.
	MarkPaid(ctx context.Context, userID string, subscriptionID string) (*domain.Subscription, *domain.Transaction, error)
	// RunAutoPaySweep bills every overdue cycle of the user's auto-pay
	// subscriptions, up to the per-subscription cap. Concurrent sweeps for
	// the same user collapse into one run.
	RunAutoPaySweep(ctx context.Context, userID string, now time.Time) (*dto.SweepResult, error)
	// RunDueSweeps sweeps every user with at least one overdue auto-pay
	// subscription. Used by the background scheduler.
	RunDueSweeps(ctx context.Context, now time.Time) error
}
