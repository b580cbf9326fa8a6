package database

import (
	"context"
	"fmt"

	"github.com/cafeteria/menu-backend/internal/models"
)

// StaffDirectoryRepository handles the signup allow-list
type StaffDirectoryRepository struct {
	db Querier
}

// NewStaffDirectoryRepository creates a new staff directory repository
func NewStaffDirectoryRepository(db Querier) *StaffDirectoryRepository {
	return &StaffDirectoryRepository{db: db}
}

// IsEligible reports whether a normalized username matches a directory
// entry, ignoring case and surrounding whitespace of the stored name
func (r *StaffDirectoryRepository) IsEligible(ctx context.Context, normalizedName string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM staff_directory WHERE LOWER(TRIM(full_name)) = $1)`
	if err := r.db.GetContext(ctx, &exists, query, normalizedName); err != nil {
		return false, fmt.Errorf("failed to check staff directory: %w", err)
	}
	return exists, nil
}

// List returns every directory entry ordered by name
func (r *StaffDirectoryRepository) List(ctx context.Context) ([]models.StaffDirectoryEntry, error) {
	query := `
		SELECT id, full_name, created_at
		FROM staff_directory
		ORDER BY full_name
	`

	entries := []models.StaffDirectoryEntry{}
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to list staff directory: %w", err)
	}
	return entries, nil
}

// Add inserts fullName. Returns nil, nil when an equivalent name already exists.
func (r *StaffDirectoryRepository) Add(ctx context.Context, fullName string) (*models.StaffDirectoryEntry, error) {
	query := `
		INSERT INTO staff_directory (full_name)
		VALUES ($1)
		ON CONFLICT ((LOWER(TRIM(full_name)))) DO NOTHING
		RETURNING id, full_name, created_at
	`

	entries := []models.StaffDirectoryEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, fullName); err != nil {
		return nil, fmt.Errorf("failed to add staff directory entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// Delete removes the entry with id. Returns false when nothing was deleted.
func (r *StaffDirectoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM staff_directory WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete staff directory entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListEligible returns directory entries that no user account matches yet
func (r *StaffDirectoryRepository) ListEligible(ctx context.Context) ([]models.EligibleStaff, error) {
	query := `
		SELECT sd.id, sd.full_name
		FROM staff_directory sd
		LEFT JOIN users u ON u.username = LOWER(TRIM(sd.full_name))
		WHERE u.id IS NULL
		ORDER BY sd.full_name
	`

	staff := []models.EligibleStaff{}
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, fmt.Errorf("failed to list eligible staff: %w", err)
	}
	return staff, nil
}
