package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/spendlog/spendlog/internal/core/ports/services"
	"github.com/spendlog/spendlog/internal/dto"
	"github.com/spendlog/spendlog/internal/middleware"
	"github.com/spendlog/spendlog/internal/platform/config"
)

// authHandler handles registration, login and the refresh token flow.
type authHandler struct {
	authService portssvc.AuthSvcFacade
	cfg         *config.Config
}

func newAuthHandler(authService portssvc.AuthSvcFacade, cfg *config.Config) *authHandler {
	return &authHandler{authService: authService, cfg: cfg}
}

// registerAuthRoutes sets up the public authentication routes. Credential
// endpoints are rate limited per IP.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, authService portssvc.AuthSvcFacade) {
	h := newAuthHandler(authService, cfg)

	rate, _ := limiter.NewRateFromFormatted("10-M")
	ipLimiter := limiter.New(memory.NewStore(), rate)

	auth := r.Group("/auth", middleware.RateLimit(ipLimiter))
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/google", h.loginWithGoogle)
		auth.POST("/google/id-token", h.loginWithGoogleIDToken)
		auth.POST("/refresh", h.refresh)
	}
}

// setRefreshTokenCookie stores the raw refresh token in an HTTP-only cookie.
func (h *authHandler) setRefreshTokenCookie(c *gin.Context, rawToken string) {
	c.SetCookie(
		h.cfg.RefreshTokenCookieName,
		rawToken,
		int(h.cfg.RefreshTokenExpiryDuration.Seconds()),
		h.cfg.RefreshTokenCookiePath,
		"",
		h.cfg.IsProduction, // Secure only over HTTPS in production
		true,
	)
}

func (h *authHandler) clearRefreshTokenCookie(c *gin.Context) {
	c.SetCookie(h.cfg.RefreshTokenCookieName, "", -1, h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)
}

// register godoc
// @Summary Register a new user
// @Description Creates a user with email and password and starts a session
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.RegisterUserRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (h *authHandler) register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for register", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	resp, rawRefreshToken, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to register user")
		return
	}

	h.setRefreshTokenCookie(c, rawRefreshToken)
	c.JSON(http.StatusCreated, resp)
}

// login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 403 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for login", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	resp, rawRefreshToken, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to log in")
		return
	}

	h.setRefreshTokenCookie(c, rawRefreshToken)
	c.JSON(http.StatusOK, resp)
}

type googleLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// loginWithGoogle godoc
// @Summary Log in with a Google OAuth authorization code
// @Description Exchanges the authorization code, creating the user on first sign-in
// @Tags auth
// @Accept json
// @Produce json
// @Param code body googleLoginRequest true "OAuth authorization code"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 403 {object} ErrorResponse "Code exchange failed"
// @Router /auth/google [post]
func (h *authHandler) loginWithGoogle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for google login", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	resp, rawRefreshToken, err := h.authService.LoginWithGoogle(c.Request.Context(), req.Code)
	if err != nil {
		respondServiceError(c, err, "Failed to log in with Google")
		return
	}

	h.setRefreshTokenCookie(c, rawRefreshToken)
	c.JSON(http.StatusOK, resp)
}

type googleIDTokenLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// loginWithGoogleIDToken godoc
// @Summary Log in with a Google Sign-In ID token
// @Description Validates the ID token from the client-side (one-tap) flow, creating the user on first sign-in
// @Tags auth
// @Accept json
// @Produce json
// @Param token body googleIDTokenLoginRequest true "Google ID token"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 403 {object} ErrorResponse "Token validation failed"
// @Router /auth/google/id-token [post]
func (h *authHandler) loginWithGoogleIDToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req googleIDTokenLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for google id token login", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	resp, rawRefreshToken, err := h.authService.LoginWithGoogleIDToken(c.Request.Context(), req.IDToken)
	if err != nil {
		respondServiceError(c, err, "Failed to log in with Google")
		return
	}

	h.setRefreshTokenCookie(c, rawRefreshToken)
	c.JSON(http.StatusOK, resp)
}

// refresh godoc
// @Summary Rotate the refresh token and issue a new access token
// @Description Reads the refresh token from its HTTP-only cookie
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthResponse
// @Failure 403 {object} ErrorResponse "Missing or invalid refresh token"
// @Router /auth/refresh [post]
func (h *authHandler) refresh(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rawToken, err := c.Cookie(h.cfg.RefreshTokenCookieName)
	if err != nil {
		logger.Warn("Refresh token cookie missing")
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Missing refresh token"})
		return
	}

	resp, rotatedToken, err := h.authService.Refresh(c.Request.Context(), rawToken)
	if err != nil {
		h.clearRefreshTokenCookie(c)
		respondServiceError(c, err, "Failed to refresh session")
		return
	}

	h.setRefreshTokenCookie(c, rotatedToken)
	c.JSON(http.StatusOK, resp)
}
