package repositories

import (
	"context"
	"time"

	"github.com/spendlog/spendlog/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	// FindUserByRefreshTokenHash resolves the session owner during refresh
	// token rotation.
	FindUserByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) error
	// UpdateRefreshToken stores the rotated refresh token hash; nil clears it (logout).
	UpdateRefreshToken(ctx context.Context, userID string, tokenHash *string, expiry *time.Time) error
	// UpdatePlan applies verified plan metadata from a backup import.
	UpdatePlan(ctx context.Context, userID string, plan string, trialEndsAt *time.Time, now time.Time) error
}
