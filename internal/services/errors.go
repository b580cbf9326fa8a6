package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingCredentials indicates an empty username or password
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrNotEligible indicates the username is not in the staff directory
	ErrNotEligible = errors.New("you are not eligible to sign up")

	// ErrUsernameTaken indicates an account already exists for the username
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials is returned for every failed login, whatever the cause
	ErrInvalidCredentials = errors.New("Invalid credentials")

	// ErrAdminSignupForbidden indicates admin signup without an admin token after bootstrap
	ErrAdminSignupForbidden = errors.New("only an admin can create admin accounts")

	// ErrForbidden indicates the caller may not act on another user's data
	ErrForbidden = errors.New("you are not allowed to access this resource")

	// ErrMenuNotFound indicates the menu does not exist
	ErrMenuNotFound = errors.New("menu not found")

	// ErrMenuItemNotFound indicates the menu item does not exist
	ErrMenuItemNotFound = errors.New("menu item not found")

	// ErrMenuInactive indicates staff tried to select from a menu that is not active
	ErrMenuInactive = errors.New("this menu is not open for selections")

	// ErrUserNotFound indicates the target user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrSelectionConflict indicates a concurrent submission claimed the same user and date
	ErrSelectionConflict = errors.New("selections were changed by another request, please retry")

	// ErrNoActiveMenu indicates no menu is currently active
	ErrNoActiveMenu = errors.New("no active menu")

	// ErrDeadlinePassed indicates selections for the menu are closed
	ErrDeadlinePassed = errors.New("the selection deadline for this menu has passed")

	// ErrStaffEntryNotFound indicates the staff directory entry does not exist
	ErrStaffEntryNotFound = errors.New("staff directory entry not found")

	// ErrStaffEntryExists indicates an equivalent name is already in the directory
	ErrStaffEntryExists = errors.New("staff member is already in the directory")
)

// ValidationError reports a malformed or incomplete request
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ThrottleError represents a locked out ip+username pair
type ThrottleError struct {
	Message    string
	RetryAfter time.Time
}

func (e *ThrottleError) Error() string {
	return e.Message
}

// RetryAfterSeconds returns the whole seconds until the lockout ends, at least 1
func (e *ThrottleError) RetryAfterSeconds(now time.Time) int {
	secs := int(e.RetryAfter.Sub(now).Seconds() + 0.999)
	if secs < 1 {
		return 1
	}
	return secs
}
