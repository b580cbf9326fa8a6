package services

import (
	"context"
	"time"

	"github.com/cafeteria/menu-backend/internal/database"
	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/cafeteria/menu-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// Audit actions written to auth_audit_logs
const (
	AuditSignupSuccess = "signup_success"
	AuditSignupFailed  = "signup_failed"
	AuditLoginSuccess  = "login_success"
	AuditLoginFailed   = "login_failed"
	AuditLoginLocked   = "login_throttled"
)

// ClientInfo identifies where a request came from
type ClientInfo struct {
	IP        string
	UserAgent string
}

// AuditService handles audit logging for authentication events
type AuditService struct {
	repo   *database.AuditLogRepository
	logger *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(repo *database.AuditLogRepository, logger *logrus.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger,
	}
}

// LogSignup records a signup outcome
func (s *AuditService) LogSignup(ctx context.Context, userID *int64, username, role string, client ClientInfo, success bool, reason string) {
	action := AuditSignupFailed
	if success {
		action = AuditSignupSuccess
	}

	details := map[string]interface{}{
		"role":    role,
		"success": success,
	}
	if reason != "" {
		details["reason"] = reason
	}

	s.logEvent(ctx, userID, action, username, client, details)
}

// LogLogin records a login outcome
func (s *AuditService) LogLogin(ctx context.Context, userID *int64, username, role string, client ClientInfo, success bool) {
	action := AuditLoginFailed
	if success {
		action = AuditLoginSuccess
	}

	s.logEvent(ctx, userID, action, username, client, map[string]interface{}{
		"role":    role,
		"success": success,
	})
}

// LogThrottled records a login rejected because the ip+username is locked out
func (s *AuditService) LogThrottled(ctx context.Context, username string, client ClientInfo, retryAfter time.Time) {
	s.logEvent(ctx, nil, AuditLoginLocked, username, client, map[string]interface{}{
		"retry_after": retryAfter,
	})
}

// logEvent writes the event, logging rather than returning storage errors
func (s *AuditService) logEvent(ctx context.Context, userID *int64, action, username string, client ClientInfo, details map[string]interface{}) {
	if s == nil || s.repo == nil {
		return
	}

	details["device_info"] = utils.ParseUserAgent(client.UserAgent)

	event := &models.AuthAuditEvent{
		UserID:    userID,
		Action:    action,
		Username:  username,
		IPAddress: models.NewNullString(client.IP),
		UserAgent: models.NewNullString(client.UserAgent),
	}

	if err := s.repo.Insert(ctx, event, details); err != nil && s.logger != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"action":   action,
			"username": username,
		}).Error("Failed to write audit log")
	}
}
