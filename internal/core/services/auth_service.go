package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/spendlog/spendlog/internal/apperrors"
	"github.com/spendlog/spendlog/internal/core/domain"
	portsrepo "github.com/spendlog/spendlog/internal/core/ports/repositories"
	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/dto"
	"github.com/spendlog/spendlog/internal/platform/config"
	"github.com/spendlog/spendlog/internal/utils"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// authService implements registration, login, Google OAuth sign-in and the
// refresh token rotation flow. Refresh tokens are opaque random strings; only
// their SHA-256 hash is stored.
type authService struct {
	BaseService
	cfg        *config.Config
	userRepo   portsrepo.UserRepository
	accountSvc portssvc.AccountSvcFacade

	oauth2Config *oauth2.Config
}

// NewAuthService creates a new auth service. accountSvc seeds default
// accounts for freshly registered users.
func NewAuthService(cfg *config.Config, userRepo portsrepo.UserRepository, accountSvc portssvc.AccountSvcFacade) portssvc.AuthSvcFacade {
	return &authService{
		cfg:        cfg,
		userRepo:   userRepo,
		accountSvc: accountSvc,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// issueSession builds the access token plus a fresh refresh token and
// persists the rotated refresh token hash.
func (s *authService) issueSession(ctx context.Context, user *domain.User) (*dto.AuthResponse, string, error) {
	accessToken, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}

	rawRefreshToken, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshHash := utils.HashRefreshToken(rawRefreshToken)
	refreshExpiry := time.Now().Add(s.cfg.RefreshTokenExpiryDuration)
	if err := s.userRepo.UpdateRefreshToken(ctx, user.UserID, &refreshHash, &refreshExpiry); err != nil {
		return nil, "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.AuthResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.cfg.JWTExpiryDuration.Seconds()),
		User:        dto.ToUserResponse(user),
	}, rawRefreshToken, nil
}

func (s *authService) Register(ctx context.Context, req dto.RegisterUserRequest) (*dto.AuthResponse, string, error) {
	logger := s.GetLogger(ctx)

	existing, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: &passwordHash,
		Plan:         domain.PlanFree,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	user.CreatedBy = user.UserID
	user.LastUpdatedBy = user.UserID

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, "", err
	}
	logger.Info("User registered", "userID", user.UserID)

	if err := s.accountSvc.EnsureDefaultAccounts(ctx, user.UserID); err != nil {
		logger.Error("Failed to seed default accounts for new user", "userID", user.UserID, "error", err)
	}

	return s.issueSession(ctx, &user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, string, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
		}
		return nil, "", err
	}
	if user.PasswordHash == nil || !utils.CheckPasswordHash(req.Password, *user.PasswordHash) {
		return nil, "", fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
	}
	return s.issueSession(ctx, user)
}

// LoginWithGoogle exchanges the authorization code, fetches the Google
// profile and finds or creates the matching user.
func (s *authService) LoginWithGoogle(ctx context.Context, code string) (*dto.AuthResponse, string, error) {
	logger := s.GetLogger(ctx)

	if s.oauth2Config.ClientID == "" {
		return nil, "", fmt.Errorf("%w: google sign-in is not configured", apperrors.ErrValidation)
	}

	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to exchange oauth code", apperrors.ErrForbidden)
	}

	info, err := s.fetchGoogleUserInfo(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if !info.VerifiedEmail {
		return nil, "", fmt.Errorf("%w: google account email is not verified", apperrors.ErrForbidden)
	}

	user, err := s.findOrCreateGoogleUser(ctx, info)
	if err != nil {
		return nil, "", err
	}
	logger.Info("Google sign-in", "userID", user.UserID)
	return s.issueSession(ctx, user)
}

// LoginWithGoogleIDToken validates a Google Sign-In ID token (the one-tap /
// client-side flow) and finds or creates the matching user.
func (s *authService) LoginWithGoogleIDToken(ctx context.Context, idTokenString string) (*dto.AuthResponse, string, error) {
	logger := s.GetLogger(ctx)

	if s.cfg.GoogleClientID == "" {
		return nil, "", fmt.Errorf("%w: google sign-in is not configured", apperrors.ErrValidation)
	}

	payload, err := idtoken.Validate(ctx, idTokenString, s.cfg.GoogleClientID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: google ID token validation failed", apperrors.ErrForbidden)
	}

	info := googleUserInfoFromClaims(payload)
	if info.Email == "" {
		return nil, "", fmt.Errorf("%w: google ID token carries no email", apperrors.ErrForbidden)
	}
	if !info.VerifiedEmail {
		return nil, "", fmt.Errorf("%w: google account email is not verified", apperrors.ErrForbidden)
	}

	user, err := s.findOrCreateGoogleUser(ctx, info)
	if err != nil {
		return nil, "", err
	}
	logger.Info("Google ID token sign-in", "userID", user.UserID)
	return s.issueSession(ctx, user)
}

// googleUserInfoFromClaims maps validated ID token claims onto the same shape
// the userinfo endpoint returns, so both Google flows share one code path.
func googleUserInfoFromClaims(payload *idtoken.Payload) *domain.GoogleUserInfo {
	info := &domain.GoogleUserInfo{ID: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		info.Email = email
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		info.VerifiedEmail = verified
	}
	if name, ok := payload.Claims["name"].(string); ok {
		info.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		info.Picture = picture
	}
	return info
}

func (s *authService) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error) {
	client := s.oauth2Config.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned status %s", resp.Status)
	}
	var info domain.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode google user info: %w", err)
	}
	return &info, nil
}

func (s *authService) findOrCreateGoogleUser(ctx context.Context, info *domain.GoogleUserInfo) (*domain.User, error) {
	user, err := s.userRepo.FindUserByGoogleID(ctx, info.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// First Google sign-in. Link to an existing password account with the
	// same email instead of creating a duplicate.
	user, err = s.userRepo.FindUserByEmail(ctx, info.Email)
	if err == nil {
		user.GoogleID = &info.ID
		if user.PhotoURL == "" {
			user.PhotoURL = info.Picture
		}
		user.LastUpdatedAt = time.Now()
		user.LastUpdatedBy = user.UserID
		if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	newUser := domain.User{
		UserID:   uuid.NewString(),
		Name:     info.Name,
		Email:    info.Email,
		PhotoURL: info.Picture,
		GoogleID: &info.ID,
		Plan:     domain.PlanFree,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	newUser.CreatedBy = newUser.UserID
	newUser.LastUpdatedBy = newUser.UserID
	if err := s.userRepo.SaveUser(ctx, newUser); err != nil {
		return nil, err
	}
	if err := s.accountSvc.EnsureDefaultAccounts(ctx, newUser.UserID); err != nil {
		s.GetLogger(ctx).Error("Failed to seed default accounts for new user", "userID", newUser.UserID, "error", err)
	}
	return &newUser, nil
}

// Refresh validates the presented refresh token against the stored hash and
// rotates it. A mismatched or expired token invalidates the session.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, string, error) {
	if refreshToken == "" {
		return nil, "", fmt.Errorf("%w: missing refresh token", apperrors.ErrForbidden)
	}

	hash := utils.HashRefreshToken(refreshToken)
	user, err := s.userRepo.FindUserByRefreshTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid refresh token", apperrors.ErrForbidden)
		}
		return nil, "", err
	}
	if user.RefreshTokenExpiry == nil || time.Now().After(*user.RefreshTokenExpiry) {
		return nil, "", fmt.Errorf("%w: refresh token expired", apperrors.ErrForbidden)
	}
	if user.RefreshTokenHash == nil || !utils.CompareRefreshTokenHash(refreshToken, *user.RefreshTokenHash) {
		return nil, "", fmt.Errorf("%w: invalid refresh token", apperrors.ErrForbidden)
	}

	return s.issueSession(ctx, user)
}

// Logout clears the stored refresh token hash.
func (s *authService) Logout(ctx context.Context, userID string) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, nil, nil)
}
