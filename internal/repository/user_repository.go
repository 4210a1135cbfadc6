// Package repository implements the persistence layer over PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gastobot/internal/database"
	"gastobot/internal/models"
)

// UserRepository handles user database operations.
type UserRepository struct {
	db database.PGXDB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db database.PGXDB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByTelegramID retrieves a user by their Telegram ID.
// Returns (nil, nil) when no user is registered for that ID.
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, telegram_id, created_at
		FROM users WHERE telegram_id = $1
	`, telegramID).Scan(&user.ID, &user.TelegramID, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Exists reports whether a user is registered for the given Telegram ID.
func (r *UserRepository) Exists(ctx context.Context, telegramID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE telegram_id = $1)
	`, telegramID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// Create registers a new user. Duplicate registrations racing each other are
// resolved by the telegram_id UNIQUE constraint.
func (r *UserRepository) Create(ctx context.Context, telegramID string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (telegram_id)
		VALUES ($1)
		RETURNING id, telegram_id, created_at
	`, telegramID).Scan(&user.ID, &user.TelegramID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}
