package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cafeteria/menu-backend/internal/middleware"
	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/cafeteria/menu-backend/internal/services"
	"github.com/cafeteria/menu-backend/internal/utils"
	"github.com/cafeteria/menu-backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

type errorMapping struct {
	target  error
	status  int
	errCode string
}

var sentinelErrors = []errorMapping{
	{services.ErrMissingCredentials, http.StatusBadRequest, "validation_error"},
	{validator.ErrEmptyPassword, http.StatusBadRequest, "validation_error"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{services.ErrNotEligible, http.StatusForbidden, "not_eligible"},
	{services.ErrAdminSignupForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrMenuInactive, http.StatusForbidden, "menu_inactive"},
	{services.ErrDeadlinePassed, http.StatusForbidden, "deadline_passed"},
	{services.ErrMenuNotFound, http.StatusNotFound, "not_found"},
	{services.ErrMenuItemNotFound, http.StatusNotFound, "not_found"},
	{services.ErrUserNotFound, http.StatusNotFound, "not_found"},
	{services.ErrStaffEntryNotFound, http.StatusNotFound, "not_found"},
	{services.ErrNoActiveMenu, http.StatusNotFound, "no_active_menu"},
	{services.ErrUsernameTaken, http.StatusConflict, "username_taken"},
	{services.ErrStaffEntryExists, http.StatusConflict, "already_exists"},
	{services.ErrSelectionConflict, http.StatusConflict, "conflict"},
}

// respondServiceError writes the status and body for an error returned by a
// service. Unknown errors are logged and answered with a generic 500.
func respondServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	var throttleErr *services.ThrottleError
	if errors.As(err, &throttleErr) {
		c.Header("Retry-After", strconv.Itoa(throttleErr.RetryAfterSeconds(time.Now())))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:   "too_many_attempts",
			Message: throttleErr.Message,
		})
		return
	}

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: validationErr.Error()})
		return
	}

	var passwordErr *validator.PasswordError
	if errors.As(err, &passwordErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "weak_password", Message: passwordErr.Error()})
		return
	}

	for _, m := range sentinelErrors {
		if errors.Is(err, m.target) {
			c.JSON(m.status, ErrorResponse{Error: m.errCode, Message: m.target.Error()})
			return
		}
	}

	logger.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}).WithError(err).Error("Request failed")

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: message})
}

// queryID reads a positive integer id from the first query parameter present
// among names. Absent parameters leave Set false.
func queryID(c *gin.Context, names ...string) (models.OptionalID, error) {
	for _, name := range names {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return models.OptionalID{}, errors.New(name + " must be a positive integer")
		}
		return models.OptionalID{Value: id, Set: true}, nil
	}
	return models.OptionalID{}, nil
}

// requiredQueryID is queryID for parameters that must be present
func requiredQueryID(c *gin.Context, names ...string) (int64, bool) {
	id, err := queryID(c, names...)
	if err != nil {
		respondBadRequest(c, err.Error())
		return 0, false
	}
	if !id.Set {
		respondBadRequest(c, names[0]+" is required")
		return 0, false
	}
	return id.Value, true
}

func actorFrom(c *gin.Context) services.Actor {
	user := middleware.MustGetUserContext(c)
	return services.Actor{UserID: user.UserID, Role: user.Role}
}

func clientFrom(c *gin.Context) services.ClientInfo {
	return services.ClientInfo{
		IP:        utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}
