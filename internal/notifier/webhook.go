// Package notifier delivers billing event notifications to an external
// webhook, behind a circuit breaker so a dead endpoint cannot slow down the
// auto-pay sweep.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/spendlog/spendlog/internal/platform/observability"
)

// BillingEvent describes one settled billing cycle.
type BillingEvent struct {
	UserID           string    `json:"userID"`
	SubscriptionID   string    `json:"subscriptionID"`
	SubscriptionName string    `json:"subscriptionName"`
	Amount           string    `json:"amount"`
	BilledAt         time.Time `json:"billedAt"`
	AutoPay          bool      `json:"autoPay"`
}

// BillingNotifier posts billing events to a configured webhook URL. A nil or
// unconfigured notifier silently drops events.
type BillingNotifier struct {
	webhookURL string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewBillingNotifier creates a notifier for the given webhook URL. An empty
// URL yields a disabled notifier.
func NewBillingNotifier(webhookURL string, logger *slog.Logger, metrics *observability.Metrics) *BillingNotifier {
	return &BillingNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "billing-webhook",
			MaxRequests: 3,                // half-open: allow 3 requests
			Interval:    30 * time.Second, // closed: reset counters every 30s
			Timeout:     10 * time.Second, // open -> half-open after 10s
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && failureRatio >= 0.6
			},
		}),
		logger:  logger,
		metrics: metrics,
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *BillingNotifier) Enabled() bool {
	return n != nil && n.webhookURL != ""
}

// NotifyBilled delivers one billing event. Failures are logged and counted,
// never propagated; billing must not fail because a notification did.
func (n *BillingNotifier) NotifyBilled(ctx context.Context, event BillingEvent) {
	if !n.Enabled() {
		return
	}

	_, err := n.breaker.Execute(func() (interface{}, error) {
		body, err := json.Marshal(event)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal billing event: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("webhook request failed: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		if n.metrics != nil {
			n.metrics.WebhookFailures.Inc()
		}
		if n.logger != nil {
			n.logger.Warn("billing webhook delivery failed",
				slog.String("subscription_id", event.SubscriptionID),
				slog.String("error", err.Error()),
			)
		}
	}
}
