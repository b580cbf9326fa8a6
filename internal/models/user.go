package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Roles a user can hold. A role is fixed when the account is created.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// NullString wraps sql.NullString to provide proper JSON marshaling
type NullString struct {
	sql.NullString
}

// NewNullString returns a valid NullString for s, or an invalid one when s is empty
func NewNullString(s string) NullString {
	return NullString{sql.NullString{String: s, Valid: s != ""}}
}

// MarshalJSON implements json.Marshaler
func (ns NullString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.String)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (ns *NullString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != nil {
		ns.Valid = true
		ns.String = *s
	} else {
		ns.Valid = false
	}
	return nil
}

// User represents an account allowed to sign in
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password"` // Never expose
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// StaffDirectoryEntry is one name on the signup allow-list
type StaffDirectoryEntry struct {
	ID        int64     `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuthAuditEvent is a signup or login outcome written to auth_audit_logs
type AuthAuditEvent struct {
	ID        int64      `json:"id" db:"id"`
	UserID    *int64     `json:"user_id,omitempty" db:"user_id"`
	Action    string     `json:"action" db:"action"`
	Username  string     `json:"username" db:"username"`
	IPAddress NullString `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent NullString `json:"user_agent,omitempty" db:"user_agent"`
	Details   NullString `json:"details,omitempty" db:"details"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
