package scheduler

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/middleware"
)

// Scheduler periodically runs the auto-pay billing sweep across every user
// with due subscriptions.
type Scheduler struct {
	subscriptionSvc portssvc.SubscriptionSvcFacade
	interval        time.Duration
	logger          *slog.Logger
}

// New creates a sweep scheduler. A non-positive interval disables it.
func New(subscriptionSvc portssvc.SubscriptionSvcFacade, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		subscriptionSvc: subscriptionSvc,
		interval:        interval,
		logger:          logger.With(slog.String("component", "sweep_scheduler")),
	}
}

// Run blocks until ctx is cancelled, sweeping once immediately and then on
// every interval tick.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Auto-pay sweep scheduler disabled")
		return
	}
	s.logger.Info("Auto-pay sweep scheduler started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Auto-pay sweep scheduler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	runCtx := middleware.ContextWithLogger(ctx, s.logger)
	if err := s.subscriptionSvc.RunDueSweeps(runCtx, time.Now()); err != nil {
		s.logger.Error("Auto-pay sweep run failed", slog.String("error", err.Error()))
	}
}
