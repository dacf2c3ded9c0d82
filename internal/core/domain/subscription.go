package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingCycle is the cadence at which a subscription bills.
type BillingCycle string

const (
	Monthly BillingCycle = "MONTHLY"
	Yearly  BillingCycle = "YEARLY"
)

// FlowType classifies a subscription or category as money in or money out.
type FlowType string

const (
	FlowIncome  FlowType = "income"
	FlowExpense FlowType = "expense"
)

// Subscription is a recurring obligation. NextBillingDate is always the next
// unpaid due date: it only ever advances, by exactly one cycle per billed
// period.
type Subscription struct {
	SubscriptionID  string          `json:"subscriptionID"` // Primary Key (e.g., UUID)
	UserID          string          `json:"userID"`         // Owning user (NON-NULL)
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"` // Positive magnitude; FlowType carries the sign
	BillingCycle    BillingCycle    `json:"billingCycle"`
	NextBillingDate time.Time       `json:"nextBillingDate"`
	Category        string          `json:"category"`
	Type            FlowType        `json:"type"`
	AutoPay         bool            `json:"autoPay"`
	WalletID        string          `json:"walletID"` // Required when AutoPay is set

	AuditFields
}

// SignedAmount returns the subscription amount signed per its flow type.
func (s Subscription) SignedAmount() decimal.Decimal {
	if s.Type == FlowExpense {
		return s.Amount.Abs().Neg()
	}
	return s.Amount.Abs()
}

// AdvanceOneCycle returns the billing date one cycle after d.
func (s Subscription) AdvanceOneCycle(d time.Time) time.Time {
	if s.BillingCycle == Yearly {
		return d.AddDate(1, 0, 0)
	}
	return d.AddDate(0, 1, 0)
}
