package domain

import "time"

// User plans.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// User represents an application user. All other entities are exclusively
// owned by exactly one user.
type User struct {
	UserID       string  `json:"userID"` // Primary Key (e.g., UUID)
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	PhotoURL     string  `json:"photoURL"`
	PasswordHash *string `json:"-"` // Nil for OAuth-only users
	GoogleID     *string `json:"-"`

	Plan        string     `json:"plan"`
	TrialEndsAt *time.Time `json:"trialEndsAt,omitempty"`

	// Refresh token rotation state. The token itself is never stored.
	RefreshTokenHash   *string    `json:"-"`
	RefreshTokenExpiry *time.Time `json:"-"`

	AuditFields
}

// IsPro reports whether the user currently has a paid plan.
func (u User) IsPro() bool {
	return u.Plan == PlanPro
}

// GoogleUserInfo is the userinfo payload returned by Google after an OAuth
// code exchange.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
