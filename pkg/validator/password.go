package validator

import (
	"errors"
	"regexp"
	"strings"
)

// PasswordSpecials are the special characters a password may contain
const PasswordSpecials = "@$!%*?&#"

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// MaxPasswordBytes is the longest password bcrypt can hash
const MaxPasswordBytes = 72

var (
	// ErrEmptyPassword indicates the password is empty
	ErrEmptyPassword = errors.New("password cannot be empty")

	lowerRegex   = regexp.MustCompile(`[a-z]`)
	upperRegex   = regexp.MustCompile(`[A-Z]`)
	digitRegex   = regexp.MustCompile(`\d`)
	specialRegex = regexp.MustCompile(`[@$!%*?&#]`)
	allowedRegex = regexp.MustCompile(`^[A-Za-z\d@$!%*?&#]+$`)
)

// PasswordError lists every complexity rule a password failed
type PasswordError struct {
	Failures []string
}

func (e *PasswordError) Error() string {
	return "password must " + strings.Join(e.Failures, ", ")
}

// PasswordValidator checks password complexity
type PasswordValidator struct{}

// NewPasswordValidator creates a new password validator instance
func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{}
}

// Validate returns nil when password is 8 to 72 bytes long, has a
// lowercase letter, an uppercase letter, a digit and one of @$!%*?&#, and
// contains nothing else. Otherwise it returns a *PasswordError.
func (v *PasswordValidator) Validate(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	var failures []string
	if len(password) < MinPasswordLength {
		failures = append(failures, "be at least 8 characters long")
	}
	if len(password) > MaxPasswordBytes {
		failures = append(failures, "be at most 72 bytes long")
	}
	if !lowerRegex.MatchString(password) {
		failures = append(failures, "contain a lowercase letter")
	}
	if !upperRegex.MatchString(password) {
		failures = append(failures, "contain an uppercase letter")
	}
	if !digitRegex.MatchString(password) {
		failures = append(failures, "contain a digit")
	}
	if !specialRegex.MatchString(password) {
		failures = append(failures, "contain one of "+PasswordSpecials)
	}
	if !allowedRegex.MatchString(password) {
		failures = append(failures, "only use letters, digits and "+PasswordSpecials)
	}

	if len(failures) > 0 {
		return &PasswordError{Failures: failures}
	}
	return nil
}
