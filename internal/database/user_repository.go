package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cafeteria/menu-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// UserRepository handles user database operations
type UserRepository struct {
	db Querier
}

// NewUserRepository creates a new user repository
func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// WithTx returns a copy of the repository bound to tx
func (r *UserRepository) WithTx(tx *sqlx.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

// Create inserts a new user and returns it with its generated id.
// A duplicate username surfaces as a unique violation, see IsUniqueViolation.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash, role string) (*models.User, error) {
	query := `
		INSERT INTO users (username, password, role)
		VALUES ($1, $2, $3)
		RETURNING id, username, password, role, created_at
	`

	user := &models.User{}
	if err := r.db.GetContext(ctx, user, query, username, passwordHash, role); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByUsernameAndRole retrieves a user by normalized username and role.
// Returns nil, nil when no such user exists.
func (r *UserRepository) GetByUsernameAndRole(ctx context.Context, username, role string) (*models.User, error) {
	query := `
		SELECT id, username, password, role, created_at
		FROM users
		WHERE username = $1 AND role = $2
	`

	user := &models.User{}
	err := r.db.GetContext(ctx, user, query, username, role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by id. Returns nil, nil when not found.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, password, role, created_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.db.GetContext(ctx, user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// ExistsByUsername checks whether any user, of any role, holds username
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// CountByRole returns how many users hold role
func (r *UserRepository) CountByRole(ctx context.Context, role string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE role = $1`
	if err := r.db.GetContext(ctx, &count, query, role); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// ListByRole returns every user holding role, ordered by username
func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	query := `
		SELECT id, username, password, role, created_at
		FROM users
		WHERE role = $1
		ORDER BY username
	`

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
