package services

import (
	"context"

	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/cafeteria/menu-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// SignupAdmin creates an admin account. Without an admin caller it is only
// allowed while no admin exists yet, which bootstraps the first account.
func (s *AuthService) SignupAdmin(ctx context.Context, rawUsername, password string, callerIsAdmin bool, client ClientInfo) (*AuthResult, error) {
	username := validator.NormalizeUsername(rawUsername)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	if !callerIsAdmin {
		admins, err := s.users.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if admins > 0 {
			s.audit.LogSignup(ctx, nil, username, models.RoleAdmin, client, false, failureReason(ErrAdminSignupForbidden))
			return nil, ErrAdminSignupForbidden
		}
	}

	result, err := s.createAccount(ctx, username, password, models.RoleAdmin)
	if err != nil {
		s.audit.LogSignup(ctx, nil, username, models.RoleAdmin, client, false, failureReason(err))
		return nil, err
	}

	s.audit.LogSignup(ctx, &result.User.ID, username, models.RoleAdmin, client, true, "")
	s.logger.WithFields(logrus.Fields{
		"user_id":   result.User.ID,
		"username":  username,
		"bootstrap": !callerIsAdmin,
	}).Info("Admin account created")

	return result, nil
}

// LoginAdmin authenticates an admin user
func (s *AuthService) LoginAdmin(ctx context.Context, rawUsername, password string, client ClientInfo) (*AuthResult, error) {
	return s.Login(ctx, models.RoleAdmin, rawUsername, password, client)
}

// LoginStaff authenticates a staff user
func (s *AuthService) LoginStaff(ctx context.Context, rawUsername, password string, client ClientInfo) (*AuthResult, error) {
	return s.Login(ctx, models.RoleStaff, rawUsername, password, client)
}
