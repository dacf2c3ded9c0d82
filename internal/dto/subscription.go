package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/internal/core/domain"
)

// CreateSubscriptionRequest defines the data needed to create a subscription.
type CreateSubscriptionRequest struct {
	Name            string              `json:"name" binding:"required"`
	Amount          decimal.Decimal     `json:"amount" binding:"required,gt=0"`
	BillingCycle    domain.BillingCycle `json:"billingCycle" binding:"required,oneof=MONTHLY YEARLY"`
	NextBillingDate time.Time           `json:"nextBillingDate" binding:"required"`
	Category        string              `json:"category"`
	Type            domain.FlowType     `json:"type" binding:"required,oneof=income expense"`
	AutoPay         bool                `json:"autoPay"`
	WalletID        string              `json:"walletID"`
}

// UpdateSubscriptionRequest defines the editable subscription fields.
type UpdateSubscriptionRequest struct {
	Name            *string              `json:"name"`
	Amount          *decimal.Decimal     `json:"amount"`
	BillingCycle    *domain.BillingCycle `json:"billingCycle"`
	NextBillingDate *time.Time           `json:"nextBillingDate"`
	Category        *string              `json:"category"`
	Type            *domain.FlowType     `json:"type"`
	AutoPay         *bool                `json:"autoPay"`
	WalletID        *string              `json:"walletID"`
}

// SubscriptionResponse defines the data returned for a subscription.
type SubscriptionResponse struct {
	SubscriptionID  string              `json:"subscriptionID"`
	Name            string              `json:"name"`
	Amount          decimal.Decimal     `json:"amount"`
	BillingCycle    domain.BillingCycle `json:"billingCycle"`
	NextBillingDate time.Time           `json:"nextBillingDate"`
	Category        string              `json:"category"`
	Type            domain.FlowType     `json:"type"`
	AutoPay         bool                `json:"autoPay"`
	WalletID        string              `json:"walletID,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// ToSubscriptionResponse converts a domain.Subscription to its response DTO.
func ToSubscriptionResponse(sub *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		SubscriptionID:  sub.SubscriptionID,
		Name:            sub.Name,
		Amount:          sub.Amount,
		BillingCycle:    sub.BillingCycle,
		NextBillingDate: sub.NextBillingDate,
		Category:        sub.Category,
		Type:            sub.Type,
		AutoPay:         sub.AutoPay,
		WalletID:        sub.WalletID,
		CreatedAt:       sub.CreatedAt,
	}
}

// ToSubscriptionResponses converts a slice of subscriptions to response DTOs.
func ToSubscriptionResponses(subs []domain.Subscription) []SubscriptionResponse {
	res := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		res[i] = ToSubscriptionResponse(&subs[i])
	}
	return res
}

// ListSubscriptionsResponse wraps the list of subscriptions.
type ListSubscriptionsResponse struct {
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
}

// MarkPaidResponse returns the advanced subscription and the billing
// transaction it emitted.
type MarkPaidResponse struct {
	Subscription SubscriptionResponse `json:"subscription"`
	Transaction  TransactionResponse  `json:"transaction"`
}

// SweepResult summarizes one auto-pay catch-up pass for a user.
type SweepResult struct {
	// Shared is true when this call piggybacked on a sweep already in
	// flight for the same user instead of running its own.
	Shared              bool `json:"shared"`
	SubscriptionsBilled int  `json:"subscriptionsBilled"`
	CyclesBilled        int  `json:"cyclesBilled"`
}
