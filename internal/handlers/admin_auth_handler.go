package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminSignup handles POST /api/auth/admin/signup. Without an admin bearer
// token it only succeeds while no admin account exists.
func (h *AuthHandler) AdminSignup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.SignupAdmin(c.Request.Context(), req.Username, req.Password, callerIsAdmin(c), clientFrom(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, h.authResponse("Admin account created", result))
}

// AdminLogin handles POST /api/auth/admin/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.LoginAdmin(c.Request.Context(), req.Username, req.Password, clientFrom(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.authResponse("Login successful", result))
}
