package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// SelectionRepository handles selection database operations
type SelectionRepository struct {
	db Querier
}

// NewSelectionRepository creates a new selection repository
func NewSelectionRepository(db Querier) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *SelectionRepository) WithTx(tx *sqlx.Tx) *SelectionRepository {
	return &SelectionRepository{db: tx}
}

// FindByUserAndDate returns the user's selection for a date, or nil, nil when there is none
func (r *SelectionRepository) FindByUserAndDate(ctx context.Context, userID int64, date models.Date) (*models.Selection, error) {
	query := `
		SELECT id, user_id, menu_item_id, selection_date, created_at
		FROM selections
		WHERE user_id = $1 AND selection_date = $2
	`

	selection := &models.Selection{}
	err := r.db.GetContext(ctx, selection, query, userID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find selection: %w", err)
	}
	return selection, nil
}

// UpdateItem points an existing selection at a different menu item
func (r *SelectionRepository) UpdateItem(ctx context.Context, id, menuItemID int64) (*models.Selection, error) {
	query := `
		UPDATE selections
		SET menu_item_id = $2
		WHERE id = $1
		RETURNING id, user_id, menu_item_id, selection_date, created_at
	`

	selection := &models.Selection{}
	if err := r.db.GetContext(ctx, selection, query, id, menuItemID); err != nil {
		return nil, fmt.Errorf("failed to update selection: %w", err)
	}
	return selection, nil
}

// Insert creates a selection for a user and date
func (r *SelectionRepository) Insert(ctx context.Context, userID, menuItemID int64, date models.Date) (*models.Selection, error) {
	query := `
		INSERT INTO selections (user_id, menu_item_id, selection_date)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, menu_item_id, selection_date, created_at
	`

	selection := &models.Selection{}
	if err := r.db.GetContext(ctx, selection, query, userID, menuItemID, date); err != nil {
		return nil, fmt.Errorf("failed to insert selection: %w", err)
	}
	return selection, nil
}

// ListForUserAndMenu returns a user's selections among a menu's items, Monday first
func (r *SelectionRepository) ListForUserAndMenu(ctx context.Context, userID, menuID int64) ([]models.SelectionDetail, error) {
	query := `
		SELECT s.id, s.user_id, s.menu_item_id, s.selection_date, s.created_at,
			mi.name, mi.description, mi.day
		FROM selections s
		JOIN menu_items mi ON mi.id = s.menu_item_id
		WHERE s.user_id = $1 AND mi.menu_id = $2
		ORDER BY s.selection_date
	`

	selections := []models.SelectionDetail{}
	if err := r.db.SelectContext(ctx, &selections, query, userID, menuID); err != nil {
		return nil, fmt.Errorf("failed to list selections: %w", err)
	}
	return selections, nil
}

// DeleteByMenu removes every selection that references an item of the menu
func (r *SelectionRepository) DeleteByMenu(ctx context.Context, menuID int64) (int64, error) {
	query := `
		DELETE FROM selections
		WHERE menu_item_id IN (SELECT id FROM menu_items WHERE menu_id = $1)
	`
	result, err := r.db.ExecContext(ctx, query, menuID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete menu selections: %w", err)
	}
	return result.RowsAffected()
}

// DeleteByMenuItem removes every selection of one item
func (r *SelectionRepository) DeleteByMenuItem(ctx context.Context, menuItemID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM selections WHERE menu_item_id = $1`, menuItemID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete item selections: %w", err)
	}
	return result.RowsAffected()
}

// ShiftDatesForMenu moves the selection_date of every selection on the
// menu's items by days, keeping dates aligned with an edited week_start.
// Must run inside a transaction: the (user_id, selection_date) check is
// deferred to commit so rows can pass over each other.
func (r *SelectionRepository) ShiftDatesForMenu(ctx context.Context, menuID int64, days int) (int64, error) {
	if _, err := r.db.ExecContext(ctx, `SET CONSTRAINTS selections_user_date_key DEFERRED`); err != nil {
		return 0, fmt.Errorf("failed to defer selection constraint: %w", err)
	}

	query := `
		UPDATE selections
		SET selection_date = selection_date + $2::INTEGER
		WHERE menu_item_id IN (SELECT id FROM menu_items WHERE menu_id = $1)
	`
	result, err := r.db.ExecContext(ctx, query, menuID, days)
	if err != nil {
		return 0, fmt.Errorf("failed to shift selection dates: %w", err)
	}
	return result.RowsAffected()
}
