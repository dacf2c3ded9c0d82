package services

import (
	"context"

	"github.com/spendlog/spendlog/internal/core/domain"
	"github.com/spendlog/spendlog/internal/dto"
)

// UserSvcFacade defines profile operations.
type UserSvcFacade interface {
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) (*domain.User, error)
}

// AuthSvcFacade defines credential and session operations. Access tokens are
// short-lived JWTs; refresh tokens are opaque strings stored hashed.
type AuthSvcFacade interface {
	Register(ctx context.Context, req dto.RegisterUserRequest) (*dto.AuthResponse, string, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, string, error)
	// LoginWithGoogle exchanges an OAuth authorization code for a session,
	// creating the user on first sign-in.
	LoginWithGoogle(ctx context.Context, code string) (*dto.AuthResponse, string, error)
	// LoginWithGoogleIDToken validates a Google Sign-In ID token directly
	// (one-tap / client-side flow) instead of exchanging a code.
	LoginWithGoogleIDToken(ctx context.Context, idToken string) (*dto.AuthResponse, string, error)
	// Refresh rotates the refresh token and issues a new access token.
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, string, error)
	Logout(ctx context.Context, userID string) error
}
