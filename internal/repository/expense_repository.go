package repository

import (
	"context"
	"fmt"
	"time"

	"gastobot/internal/database"
	"gastobot/internal/models"
)

// ExpenseRepository handles expense database operations.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create adds a new expense. The database assigns the identifier, and the
// creation timestamp unless one is already set.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if expense.AddedAt.IsZero() {
		expense.AddedAt = time.Now()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (user_id, description, amount, category, added_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, expense.UserID, expense.Description, expense.Amount, expense.Category, expense.AddedAt,
	).Scan(&expense.ID)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// ListSince retrieves a user's expenses created at or after the given time,
// most recent first.
func (r *ExpenseRepository) ListSince(ctx context.Context, userID int64, since time.Time) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, description, amount, category, added_at
		FROM expenses
		WHERE user_id = $1 AND added_at >= $2
		ORDER BY added_at DESC, id DESC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var exp models.Expense
		if err := rows.Scan(&exp.ID, &exp.UserID, &exp.Description, &exp.Amount, &exp.Category, &exp.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}

	return expenses, nil
}
