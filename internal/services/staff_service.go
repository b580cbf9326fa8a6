package services

import (
	"context"
	"errors"
	"strings"

	"github.com/cafeteria/menu-backend/internal/database"
	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// StaffService handles the staff directory and staff account listings
type StaffService struct {
	directory *database.StaffDirectoryRepository
	users     *database.UserRepository
	logger    *logrus.Logger
}

// NewStaffService creates a new StaffService
func NewStaffService(
	directory *database.StaffDirectoryRepository,
	users *database.UserRepository,
	logger *logrus.Logger,
) *StaffService {
	return &StaffService{
		directory: directory,
		users:     users,
		logger:    logger,
	}
}

// ListDirectory returns every name on the signup allow-list
func (s *StaffService) ListDirectory(ctx context.Context) ([]models.StaffDirectoryEntry, error) {
	return s.directory.List(ctx)
}

// AddToDirectory puts a full name on the allow-list. A name that only
// differs by case or surrounding spaces from an existing one is rejected.
func (s *StaffService) AddToDirectory(ctx context.Context, fullName string) (*models.StaffDirectoryEntry, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, validationErr("full_name", "is required")
	}
	if len(fullName) > 150 {
		return nil, validationErr("full_name", "must be at most 150 characters")
	}

	entry, err := s.directory.Add(ctx, fullName)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrStaffEntryExists
	}

	s.logger.WithField("entry_id", entry.ID).Info("Staff directory entry added")
	return entry, nil
}

// SeedDirectory adds every name that is not already listed and returns how many were added
func (s *StaffService) SeedDirectory(ctx context.Context, names []string) (int, error) {
	added := 0
	for _, name := range names {
		_, err := s.AddToDirectory(ctx, name)
		var invalid *ValidationError
		switch {
		case err == nil:
			added++
		case errors.Is(err, ErrStaffEntryExists):
		case errors.As(err, &invalid):
			s.logger.WithError(err).Warn("Skipping invalid staff directory name")
		default:
			return added, err
		}
	}
	return added, nil
}

// RemoveFromDirectory deletes an allow-list entry. Existing accounts are kept.
func (s *StaffService) RemoveFromDirectory(ctx context.Context, id int64) error {
	deleted, err := s.directory.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrStaffEntryNotFound
	}
	s.logger.WithField("entry_id", id).Info("Staff directory entry removed")
	return nil
}

// ListEligible returns directory entries without an account yet
func (s *StaffService) ListEligible(ctx context.Context) ([]models.EligibleStaff, error) {
	return s.directory.ListEligible(ctx)
}

// ListStaffUsers returns every staff account
func (s *StaffService) ListStaffUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListByRole(ctx, models.RoleStaff)
}
