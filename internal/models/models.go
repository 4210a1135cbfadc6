// Package models defines the domain entities for the expense bot.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned when the extracted category is missing or
// not part of the catalog.
const DefaultCategory = "Other"

// DefaultDescription is assigned when the extraction carries no description.
const DefaultDescription = "Unknown expense"

// Categories is the closed catalog of expense categories. The extraction
// prompt enumerates exactly this list.
var Categories = []string{
	"Housing",
	"Transportation",
	"Food",
	"Utilities",
	"Insurance",
	"Medical",
	"Healthcare",
	"Savings",
	"Debt",
	"Education",
	"Entertainment",
	"Other",
}

// NormalizeCategory maps a free-form category name onto the catalog.
// Matching is case-insensitive and exact; anything else becomes Other.
func NormalizeCategory(name string) string {
	name = strings.TrimSpace(name)
	for _, cat := range Categories {
		if strings.EqualFold(cat, name) {
			return cat
		}
	}
	return DefaultCategory
}

// User represents a registered bot user. TelegramID is the messaging
// platform's stable identifier; ID is assigned by the database.
type User struct {
	ID         int64
	TelegramID string
	CreatedAt  time.Time
}

// Expense represents a single persisted expense entry.
type Expense struct {
	ID          int64
	UserID      int64
	Description string
	Amount      decimal.Decimal
	Category    string
	AddedAt     time.Time
}

// ExpenseCandidate is the structured result of running a chat message
// through the extraction prompt. It is ephemeral: candidates either become
// persisted Expenses or are discarded.
type ExpenseCandidate struct {
	IsExpense   bool            `json:"is_expense"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}
