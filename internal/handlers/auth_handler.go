package handlers

import (
	"net/http"
	"time"

	"github.com/cafeteria/menu-backend/internal/middleware"
	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/cafeteria/menu-backend/internal/services"
	"github.com/cafeteria/menu-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles signup and login HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	jwtService  *jwt.Service
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, jwtService *jwt.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// CredentialsRequest is the body of every signup and login request
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned after a successful signup or login
type AuthResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in_seconds"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), req.Username, req.Password, clientFrom(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, h.authResponse("Account created", result))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.LoginStaff(c.Request.Context(), req.Username, req.Password, clientFrom(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.authResponse("Login successful", result))
}

func (h *AuthHandler) authResponse(message string, result *services.AuthResult) AuthResponse {
	expiresAt, err := h.jwtService.GetTokenExpiry(result.Token)
	if err != nil {
		expiresAt = time.Now().Add(h.jwtService.Expiry())
	}

	return AuthResponse{
		Message:   message,
		Token:     result.Token,
		ExpiresIn: int(h.jwtService.Expiry().Seconds()),
		ExpiresAt: expiresAt,
		User:      result.User,
	}
}

// callerIsAdmin reports whether OptionalAuth found an admin token
func callerIsAdmin(c *gin.Context) bool {
	user, ok := middleware.GetUserContext(c)
	return ok && user.Role == models.RoleAdmin
}
