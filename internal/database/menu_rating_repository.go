package database

import (
	"context"
	"fmt"

	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// MenuRatingRepository handles menu rating database operations
type MenuRatingRepository struct {
	db Querier
}

// NewMenuRatingRepository creates a new menu rating repository
func NewMenuRatingRepository(db Querier) *MenuRatingRepository {
	return &MenuRatingRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *MenuRatingRepository) WithTx(tx *sqlx.Tx) *MenuRatingRepository {
	return &MenuRatingRepository{db: tx}
}

// Upsert stores a user's rating of a menu, replacing any earlier one
func (r *MenuRatingRepository) Upsert(ctx context.Context, menuID, userID int64, rating int, comment models.NullString) (*models.MenuRating, error) {
	query := `
		INSERT INTO menu_ratings (menu_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (menu_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, created_at = NOW()
		RETURNING id, menu_id, user_id, rating, comment, created_at
	`

	result := &models.MenuRating{}
	if err := r.db.GetContext(ctx, result, query, menuID, userID, rating, comment.NullString); err != nil {
		return nil, fmt.Errorf("failed to save menu rating: %w", err)
	}
	return result, nil
}

// ListWithDetails returns every rating with its rater and menu week, newest first
func (r *MenuRatingRepository) ListWithDetails(ctx context.Context) ([]models.MenuRatingView, error) {
	query := `
		SELECT mr.id, mr.menu_id, mr.user_id, mr.rating, mr.comment, mr.created_at,
			u.username, m.week_start
		FROM menu_ratings mr
		JOIN users u ON u.id = mr.user_id
		JOIN menus m ON m.id = mr.menu_id
		ORDER BY mr.created_at DESC, mr.id DESC
	`

	ratings := []models.MenuRatingView{}
	if err := r.db.SelectContext(ctx, &ratings, query); err != nil {
		return nil, fmt.Errorf("failed to list menu ratings: %w", err)
	}
	return ratings, nil
}

// DeleteByMenu removes every rating of a menu
func (r *MenuRatingRepository) DeleteByMenu(ctx context.Context, menuID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM menu_ratings WHERE menu_id = $1`, menuID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete menu ratings: %w", err)
	}
	return result.RowsAffected()
}
