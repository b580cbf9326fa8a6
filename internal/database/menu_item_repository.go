package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// dayOrder sorts weekday names Monday through Friday
const dayOrder = `CASE day
			WHEN 'Monday' THEN 1
			WHEN 'Tuesday' THEN 2
			WHEN 'Wednesday' THEN 3
			WHEN 'Thursday' THEN 4
			WHEN 'Friday' THEN 5
			ELSE 6
		END`

// MenuItemRepository handles menu item database operations
type MenuItemRepository struct {
	db Querier
}

// NewMenuItemRepository creates a new menu item repository
func NewMenuItemRepository(db Querier) *MenuItemRepository {
	return &MenuItemRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *MenuItemRepository) WithTx(tx *sqlx.Tx) *MenuItemRepository {
	return &MenuItemRepository{db: tx}
}

// ListByMenu returns a menu's items ordered by weekday, then insertion order
func (r *MenuItemRepository) ListByMenu(ctx context.Context, menuID int64) ([]models.MenuItem, error) {
	query := `
		SELECT id, menu_id, name, description, day, created_at
		FROM menu_items
		WHERE menu_id = $1
		ORDER BY ` + dayOrder + `, id
	`

	items := []models.MenuItem{}
	if err := r.db.SelectContext(ctx, &items, query, menuID); err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

// GetByID retrieves an item by id. Returns nil, nil when not found.
func (r *MenuItemRepository) GetByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	query := `
		SELECT id, menu_id, name, description, day, created_at
		FROM menu_items
		WHERE id = $1
	`

	item := &models.MenuItem{}
	err := r.db.GetContext(ctx, item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return item, nil
}

// Create inserts an item into a menu
func (r *MenuItemRepository) Create(ctx context.Context, menuID int64, name string, description models.NullString, day string) (*models.MenuItem, error) {
	query := `
		INSERT INTO menu_items (menu_id, name, description, day)
		VALUES ($1, $2, $3, $4)
		RETURNING id, menu_id, name, description, day, created_at
	`

	item := &models.MenuItem{}
	if err := r.db.GetContext(ctx, item, query, menuID, name, description.NullString, day); err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}
	return item, nil
}

// Delete removes one item. Returns false when it does not exist.
func (r *MenuItemRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete menu item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// DeleteByMenu removes every item of a menu and returns how many were removed
func (r *MenuItemRepository) DeleteByMenu(ctx context.Context, menuID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE menu_id = $1`, menuID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete menu items: %w", err)
	}
	return result.RowsAffected()
}

// CountByMenu returns the number of items in a menu
func (r *MenuItemRepository) CountByMenu(ctx context.Context, menuID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM menu_items WHERE menu_id = $1`, menuID); err != nil {
		return 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	return count, nil
}
