package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/spendlog/spendlog/internal/apperrors"
	"github.com/spendlog/spendlog/internal/core/domain"
	portsrepo "github.com/spendlog/spendlog/internal/core/ports/repositories"
	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/dto"
	"github.com/spendlog/spendlog/internal/notifier"
	"github.com/spendlog/spendlog/internal/platform/observability"
)

// maxCatchUpCycles caps billing iterations per subscription per sweep pass.
// Bounds the damage from a corrupted stored date or severe clock skew: at
// most this many transactions can be emitted for one subscription in one pass.
const maxCatchUpCycles = 12

// sweepConcurrency bounds how many users the periodic sweep bills at once.
const sweepConcurrency = 4

// subscriptionService manages recurring obligations and settles overdue
// auto-pay cycles.
type subscriptionService struct {
	BaseService
	subscriptionRepo portsrepo.SubscriptionRepository
	accountRepo      portsrepo.AccountRepository
	transactionSvc   portssvc.TransactionSvcFacade
	billingNotifier  *notifier.BillingNotifier
	metrics          *observability.Metrics

	// sweepGroup collapses concurrent sweeps for the same user into one run.
	// A sweep arriving while another is in flight for that user waits for and
	// shares its result instead of re-reading stale billing dates.
	sweepGroup singleflight.Group
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(
	subscriptionRepo portsrepo.SubscriptionRepository,
	accountRepo portsrepo.AccountRepository,
	transactionSvc portssvc.TransactionSvcFacade,
	billingNotifier *notifier.BillingNotifier,
	metrics *observability.Metrics,
) portssvc.SubscriptionSvcFacade {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		accountRepo:      accountRepo,
		transactionSvc:   transactionSvc,
		billingNotifier:  billingNotifier,
		metrics:          metrics,
	}
}

var _ portssvc.SubscriptionSvcFacade = (*subscriptionService)(nil)

// startOfDay normalizes a time to its day boundary.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *subscriptionService) validateSubscription(ctx context.Context, userID string, name string, cycle domain.BillingCycle, flow domain.FlowType, autoPay bool, walletID string) error {
	if name == "" {
		return fmt.Errorf("%w: subscription name is required", apperrors.ErrValidation)
	}
	if cycle != domain.Monthly && cycle != domain.Yearly {
		return fmt.Errorf("%w: invalid billing cycle %q", apperrors.ErrValidation, cycle)
	}
	if flow != domain.FlowIncome && flow != domain.FlowExpense {
		return fmt.Errorf("%w: invalid subscription type %q", apperrors.ErrValidation, flow)
	}
	if autoPay && walletID == "" {
		return fmt.Errorf("%w: auto-pay requires a linked wallet", apperrors.ErrValidation)
	}
	if walletID != "" {
		wallet, err := s.accountRepo.FindAccountByID(ctx, walletID)
		if err != nil {
			return fmt.Errorf("linked wallet: %w", err)
		}
		if wallet.UserID != userID {
			return apperrors.ErrForbidden
		}
	}
	return nil
}

// CreateSubscription validates and persists a new subscription.
func (s *subscriptionService) CreateSubscription(ctx context.Context, userID string, req dto.CreateSubscriptionRequest) (*domain.Subscription, error) {
	if err := s.validateSubscription(ctx, userID, req.Name, req.BillingCycle, req.Type, req.AutoPay, req.WalletID); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: subscription amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now()
	nextBilling := req.NextBillingDate
	if nextBilling.IsZero() {
		nextBilling = startOfDay(now)
	}

	sub := domain.Subscription{
		SubscriptionID:  uuid.NewString(),
		UserID:          userID,
		Name:            req.Name,
		Amount:          req.Amount,
		BillingCycle:    req.BillingCycle,
		NextBillingDate: nextBilling,
		Category:        req.Category,
		Type:            req.Type,
		AutoPay:         req.AutoPay,
		WalletID:        req.WalletID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.subscriptionRepo.SaveSubscription(ctx, sub); err != nil {
		s.LogError(ctx, err, "failed to create subscription", "subscription_name", req.Name)
		return nil, err
	}

	s.LogInfo(ctx, "subscription created", "subscription_id", sub.SubscriptionID)
	return &sub, nil
}

// GetSubscriptionByID fetches one subscription, enforcing ownership.
func (s *subscriptionService) GetSubscriptionByID(ctx context.Context, userID string, subscriptionID string) (*domain.Subscription, error) {
	sub, err := s.subscriptionRepo.FindSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return sub, nil
}

// ListSubscriptions returns every subscription the user owns.
func (s *subscriptionService) ListSubscriptions(ctx context.Context, userID string) ([]domain.Subscription, error) {
	return s.subscriptionRepo.ListSubscriptions(ctx, userID)
}

// UpdateSubscription applies the provided fields to an existing subscription.
// NextBillingDate may only move forward; regressing it would re-bill settled
// periods on the next sweep.
func (s *subscriptionService) UpdateSubscription(ctx context.Context, userID string, subscriptionID string, req dto.UpdateSubscriptionRequest) (*domain.Subscription, error) {
	sub, err := s.GetSubscriptionByID(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		sub.Name = *req.Name
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: subscription amount must be positive", apperrors.ErrValidation)
		}
		sub.Amount = *req.Amount
	}
	if req.BillingCycle != nil {
		sub.BillingCycle = *req.BillingCycle
	}
	if req.NextBillingDate != nil {
		if req.NextBillingDate.Before(sub.NextBillingDate) {
			return nil, fmt.Errorf("%w: next billing date cannot move backwards", apperrors.ErrValidation)
		}
		sub.NextBillingDate = *req.NextBillingDate
	}
	if req.Category != nil {
		sub.Category = *req.Category
	}
	if req.Type != nil {
		sub.Type = *req.Type
	}
	if req.AutoPay != nil {
		sub.AutoPay = *req.AutoPay
	}
	if req.WalletID != nil {
		sub.WalletID = *req.WalletID
	}

	if err := s.validateSubscription(ctx, userID, sub.Name, sub.BillingCycle, sub.Type, sub.AutoPay, sub.WalletID); err != nil {
		return nil, err
	}

	sub.LastUpdatedAt = time.Now()
	sub.LastUpdatedBy = userID

	if err := s.subscriptionRepo.UpdateSubscription(ctx, *sub); err != nil {
		s.LogError(ctx, err, "failed to update subscription", "subscription_id", subscriptionID)
		return nil, err
	}
	return sub, nil
}

// DeleteSubscription removes a subscription. Billing transactions already
// emitted keep their subscription reference as a dangling label.
func (s *subscriptionService) DeleteSubscription(ctx context.Context, userID string, subscriptionID string) error {
	if _, err := s.GetSubscriptionByID(ctx, userID, subscriptionID); err != nil {
		return err
	}
	if err := s.subscriptionRepo.DeleteSubscription(ctx, subscriptionID); err != nil {
		s.LogError(ctx, err, "failed to delete subscription", "subscription_id", subscriptionID)
		return err
	}
	return nil
}

// billOneCycle emits one billing transaction through the standard
// add-transaction path, so the balance effect follows the same rules as any
// direct entry.
func (s *subscriptionService) billOneCycle(ctx context.Context, sub *domain.Subscription, billedAt time.Time, autoPay bool) (*domain.Transaction, error) {
	walletID := sub.WalletID
	req := dto.CreateTransactionRequest{
		Text:           sub.Name,
		Amount:         sub.SignedAmount(),
		Category:       sub.Category,
		Date:           billedAt,
		SubscriptionID: &sub.SubscriptionID,
	}
	if walletID != "" {
		req.AccountID = &walletID
	}

	txn, err := s.transactionSvc.AddTransaction(ctx, sub.UserID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to bill subscription %s: %w", sub.SubscriptionID, err)
	}

	s.billingNotifier.NotifyBilled(ctx, notifier.BillingEvent{
		UserID:           sub.UserID,
		SubscriptionID:   sub.SubscriptionID,
		SubscriptionName: sub.Name,
		Amount:           sub.SignedAmount().String(),
		BilledAt:         billedAt,
		AutoPay:          autoPay,
	})
	return txn, nil
}

// MarkPaid settles exactly one billing cycle manually. No catch-up: a
// subscription neglected for several periods settles one period per call.
func (s *subscriptionService) MarkPaid(ctx context.Context, userID string, subscriptionID string) (*domain.Subscription, *domain.Transaction, error) {
	sub, err := s.GetSubscriptionByID(ctx, userID, subscriptionID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	txn, err := s.billOneCycle(ctx, sub, now, false)
	if err != nil {
		return nil, nil, err
	}

	next := sub.AdvanceOneCycle(sub.NextBillingDate)
	if err := s.subscriptionRepo.UpdateNextBillingDate(ctx, subscriptionID, next, userID, now); err != nil {
		s.LogError(ctx, err, "failed to advance billing date after manual payment", "subscription_id", subscriptionID)
		return nil, nil, err
	}
	sub.NextBillingDate = next
	sub.LastUpdatedAt = now
	sub.LastUpdatedBy = userID

	s.LogInfo(ctx, "subscription marked paid", "subscription_id", subscriptionID, "next_billing_date", next.Format(time.DateOnly))
	return sub, txn, nil
}

// RunAutoPaySweep settles every overdue cycle of the user's auto-pay
// subscriptions. Concurrent calls for the same user collapse into a single
// run; late arrivals receive the in-flight run's result.
func (s *subscriptionService) RunAutoPaySweep(ctx context.Context, userID string, now time.Time) (*dto.SweepResult, error) {
	v, err, shared := s.sweepGroup.Do(userID, func() (interface{}, error) {
		return s.sweepUser(ctx, userID, now)
	})
	if err != nil {
		return nil, err
	}

	result := v.(*dto.SweepResult)
	if shared {
		if s.metrics != nil {
			s.metrics.SweepsSkipped.Inc()
		}
		shared := *result
		shared.Shared = true
		return &shared, nil
	}
	return result, nil
}

// sweepUser is the single-flight body of RunAutoPaySweep.
func (s *subscriptionService) sweepUser(ctx context.Context, userID string, now time.Time) (*dto.SweepResult, error) {
	subs, err := s.subscriptionRepo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := startOfDay(now)
	result := &dto.SweepResult{}

	for i := range subs {
		sub := subs[i]
		if !sub.AutoPay || sub.WalletID == "" {
			continue
		}

		next := startOfDay(sub.NextBillingDate)
		cycles := 0
		for !next.After(today) && cycles < maxCatchUpCycles {
			if _, err := s.billOneCycle(ctx, &sub, now, true); err != nil {
				return nil, err
			}
			next = sub.AdvanceOneCycle(next)
			cycles++
		}

		if cycles == 0 {
			continue
		}
		if cycles == maxCatchUpCycles && !next.After(today) {
			if s.metrics != nil {
				s.metrics.SweepCapHits.Inc()
			}
			s.LogError(ctx, fmt.Errorf("billing cap reached"), "subscription hit catch-up cap, remaining cycles deferred",
				"subscription_id", sub.SubscriptionID, "next_billing_date", next.Format(time.DateOnly))
		}

		if err := s.subscriptionRepo.UpdateNextBillingDate(ctx, sub.SubscriptionID, next, userID, now); err != nil {
			return nil, fmt.Errorf("failed to persist advanced billing date for subscription %s: %w", sub.SubscriptionID, err)
		}

		result.SubscriptionsBilled++
		result.CyclesBilled += cycles
		if s.metrics != nil {
			s.metrics.SweepCyclesBilled.Add(float64(cycles))
		}
	}

	if result.CyclesBilled > 0 {
		s.LogInfo(ctx, "auto-pay sweep completed",
			"user_id", userID,
			"subscriptions_billed", result.SubscriptionsBilled,
			"cycles_billed", result.CyclesBilled,
		)
	}
	return result, nil
}

// RunDueSweeps sweeps every user with at least one overdue auto-pay
// subscription, a bounded number of users at a time.
func (s *subscriptionService) RunDueSweeps(ctx context.Context, now time.Time) error {
	userIDs, err := s.subscriptionRepo.ListDueAutoPayUserIDs(ctx, now)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			_, err := s.RunAutoPaySweep(gctx, userID, now)
			return err
		})
	}
	return g.Wait()
}
