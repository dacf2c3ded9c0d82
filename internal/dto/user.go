package dto

import (
	"time"

	"github.com/spendlog/spendlog/internal/core/domain"
)

// RegisterUserRequest defines the data needed to register with a password.
type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest defines password login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest defines the editable profile fields.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	PhotoURL *string `json:"photoURL"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID      string     `json:"userID"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	PhotoURL    string     `json:"photoURL,omitempty"`
	Plan        string     `json:"plan"`
	TrialEndsAt *time.Time `json:"trialEndsAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToUserResponse converts a domain.User to its response DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:      u.UserID,
		Name:        u.Name,
		Email:       u.Email,
		PhotoURL:    u.PhotoURL,
		Plan:        u.Plan,
		TrialEndsAt: u.TrialEndsAt,
		CreatedAt:   u.CreatedAt,
	}
}

// AuthResponse returns an access token after login/refresh. The refresh
// token travels separately as an HTTP-only cookie.
type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int64        `json:"expiresIn"` // Seconds
	User        UserResponse `json:"user"`
}
