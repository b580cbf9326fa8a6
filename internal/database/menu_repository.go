package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// MenuRepository handles menu database operations
type MenuRepository struct {
	db Querier
}

// NewMenuRepository creates a new menu repository
func NewMenuRepository(db Querier) *MenuRepository {
	return &MenuRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *MenuRepository) WithTx(tx *sqlx.Tx) *MenuRepository {
	return &MenuRepository{db: tx}
}

// MenuUpdate carries the optional fields of a menu update; nil leaves a column unchanged
type MenuUpdate struct {
	WeekStart *models.Date
	Deadline  *time.Time
	IsActive  *bool
}

// List returns menus newest week first, optionally only the active ones
func (r *MenuRepository) List(ctx context.Context, activeOnly bool) ([]models.Menu, error) {
	query := `
		SELECT id, week_start, deadline, is_active, created_at
		FROM menus
	`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY week_start DESC, id DESC`

	menus := []models.Menu{}
	if err := r.db.SelectContext(ctx, &menus, query); err != nil {
		return nil, fmt.Errorf("failed to list menus: %w", err)
	}
	return menus, nil
}

// GetByID retrieves a menu by id. Returns nil, nil when not found.
func (r *MenuRepository) GetByID(ctx context.Context, id int64) (*models.Menu, error) {
	query := `
		SELECT id, week_start, deadline, is_active, created_at
		FROM menus
		WHERE id = $1
	`

	menu := &models.Menu{}
	err := r.db.GetContext(ctx, menu, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}
	return menu, nil
}

// GetActive returns the most recent active menu, or nil, nil when none is active
func (r *MenuRepository) GetActive(ctx context.Context) (*models.Menu, error) {
	query := `
		SELECT id, week_start, deadline, is_active, created_at
		FROM menus
		WHERE is_active = TRUE
		ORDER BY week_start DESC, id DESC
		LIMIT 1
	`

	menu := &models.Menu{}
	err := r.db.GetContext(ctx, menu, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active menu: %w", err)
	}
	return menu, nil
}

// Create inserts a menu
func (r *MenuRepository) Create(ctx context.Context, weekStart models.Date, deadline time.Time, isActive bool) (*models.Menu, error) {
	query := `
		INSERT INTO menus (week_start, deadline, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, week_start, deadline, is_active, created_at
	`

	menu := &models.Menu{}
	if err := r.db.GetContext(ctx, menu, query, weekStart, deadline, isActive); err != nil {
		return nil, fmt.Errorf("failed to create menu: %w", err)
	}
	return menu, nil
}

// Update applies the non-nil fields of upd. Returns nil, nil when the menu does not exist.
func (r *MenuRepository) Update(ctx context.Context, id int64, upd MenuUpdate) (*models.Menu, error) {
	query := `
		UPDATE menus
		SET week_start = COALESCE($2, week_start),
			deadline = COALESCE($3, deadline),
			is_active = COALESCE($4, is_active)
		WHERE id = $1
		RETURNING id, week_start, deadline, is_active, created_at
	`

	var weekStart, deadline, isActive interface{}
	if upd.WeekStart != nil {
		weekStart = *upd.WeekStart
	}
	if upd.Deadline != nil {
		deadline = *upd.Deadline
	}
	if upd.IsActive != nil {
		isActive = *upd.IsActive
	}

	menu := &models.Menu{}
	err := r.db.GetContext(ctx, menu, query, id, weekStart, deadline, isActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update menu: %w", err)
	}
	return menu, nil
}

// DeactivateOthers clears is_active on every menu except keepID
func (r *MenuRepository) DeactivateOthers(ctx context.Context, keepID int64) error {
	query := `UPDATE menus SET is_active = FALSE WHERE id <> $1 AND is_active = TRUE`
	if _, err := r.db.ExecContext(ctx, query, keepID); err != nil {
		return fmt.Errorf("failed to deactivate menus: %w", err)
	}
	return nil
}

// Delete removes the menu row. Dependent rows must be removed first.
// Returns false when the menu does not exist.
func (r *MenuRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete menu: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}
