package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cafeteria/menu-backend/internal/models"
)

// AuditLogRepository writes signup and login outcomes to auth_audit_logs
type AuditLogRepository struct {
	db Querier
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db Querier) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Insert stores one audit event. details is marshalled to JSONB.
func (r *AuditLogRepository) Insert(ctx context.Context, event *models.AuthAuditEvent, details map[string]interface{}) error {
	var detailsJSON interface{}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
		detailsJSON = string(raw)
	}

	query := `
		INSERT INTO auth_audit_logs (user_id, action, username, ip_address, user_agent, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.UserID,
		event.Action,
		event.Username,
		event.IPAddress.NullString,
		event.UserAgent.NullString,
		detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
