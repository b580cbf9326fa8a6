package database

import (
	"context"
	"fmt"

	"github.com/cafeteria/menu-backend/internal/models"
)

// OverviewRepository runs the admin dashboard aggregation queries
type OverviewRepository struct {
	db Querier
}

// NewOverviewRepository creates a new overview repository
func NewOverviewRepository(db Querier) *OverviewRepository {
	return &OverviewRepository{db: db}
}

// CountSelectionsForMenu counts selections pointing at any item of the menu
func (r *OverviewRepository) CountSelectionsForMenu(ctx context.Context, menuID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM selections s
		JOIN menu_items mi ON mi.id = s.menu_item_id
		WHERE mi.menu_id = $1
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, menuID); err != nil {
		return 0, fmt.Errorf("failed to count selections: %w", err)
	}
	return count, nil
}

// StaffSelections returns one row per staff user with the names of the
// items they picked from the menu, Monday through Friday. A menuID of zero
// yields rows with no picks.
func (r *OverviewRepository) StaffSelections(ctx context.Context, menuID int64) ([]models.StaffSelectionRow, error) {
	query := `
		SELECT u.id AS user_id, u.username,
			ARRAY[
				MAX(CASE WHEN mi.day = 'Monday' THEN mi.name END),
				MAX(CASE WHEN mi.day = 'Tuesday' THEN mi.name END),
				MAX(CASE WHEN mi.day = 'Wednesday' THEN mi.name END),
				MAX(CASE WHEN mi.day = 'Thursday' THEN mi.name END),
				MAX(CASE WHEN mi.day = 'Friday' THEN mi.name END)
			]::TEXT[] AS selections
		FROM users u
		LEFT JOIN selections s ON s.user_id = u.id
			AND s.menu_item_id IN (SELECT id FROM menu_items WHERE menu_id = $1)
		LEFT JOIN menu_items mi ON mi.id = s.menu_item_id
		WHERE u.role = 'staff'
		GROUP BY u.id, u.username
		ORDER BY u.username
	`

	rows := []models.StaffSelectionRow{}
	if err := r.db.SelectContext(ctx, &rows, query, menuID); err != nil {
		return nil, fmt.Errorf("failed to load staff selections: %w", err)
	}
	return rows, nil
}
