package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/prevozi/carpool-backend/internal/config"
	"github.com/prevozi/carpool-backend/internal/database"
	"github.com/prevozi/carpool-backend/internal/middleware"
	"github.com/prevozi/carpool-backend/internal/models"
	"github.com/prevozi/carpool-backend/pkg/jwt"
	"github.com/prevozi/carpool-backend/pkg/validator"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	jwtService     *jwt.Service
	phoneValidator *validator.PhoneValidator
	userRepository *database.UserRepository
	config         *config.Config
	logger         *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	jwtService *jwt.Service,
	phoneValidator *validator.PhoneValidator,
	userRepository *database.UserRepository,
	cfg *config.Config,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		jwtService:     jwtService,
		phoneValidator: phoneValidator,
		userRepository: userRepository,
		config:         cfg,
		logger:         logger,
	}
}

// RegisterRequest represents the account creation request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse represents a successful authentication response
type AuthResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	ExpiresIn    int                `json:"expires_in_seconds"`
	User         models.UserProfile `json:"user"`
}

// UpdateProfileRequest represents a partial profile update. Absent fields
// are left untouched.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	ImageURL *string `json:"image_url"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.config.Security.BcryptCost)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.userRepository.CreateUser(email, strings.TrimSpace(req.Name), string(hash))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithField("user_id", user.ID).Info("User registered")
	h.respondWithTokens(c, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.userRepository.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			h.respondInvalidCredentials(c)
			return
		}
		respondError(c, h.logger, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.respondInvalidCredentials(c)
		return
	}

	h.respondWithTokens(c, http.StatusOK, user)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired refresh token",
			Code:    "INVALID_TOKEN",
		})
		return
	}

	// The user may have been deleted since the token was issued.
	user, err := h.userRepository.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "Account no longer exists",
				Code:    "INVALID_TOKEN",
			})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	h.respondWithTokens(c, http.StatusOK, user)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	user, err := h.userRepository.GetUserByID(userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}

// UpdateMe handles PATCH /api/v1/auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Name cannot be empty",
		})
		return
	}

	if req.Phone != nil {
		sanitized, err := h.phoneValidator.Validate(*req.Phone)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
			})
			return
		}
		req.Phone = &sanitized
	}

	user, err := h.userRepository.UpdateProfile(userCtx.UserID, req.Name, req.Phone, req.ImageURL)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, status int, user *models.User) {
	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(status, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.config.JWT.AccessTokenExpiry.Seconds()),
		User:         user.Profile(),
	})
}

func (h *AuthHandler) respondInvalidCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: "Invalid email or password",
		Code:    "INVALID_CREDENTIALS",
	})
}
