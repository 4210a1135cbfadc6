package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "exact match", input: "Transportation", want: "Transportation"},
		{name: "case insensitive", input: "transportation", want: "Transportation"},
		{name: "uppercase", input: "FOOD", want: "Food"},
		{name: "surrounding whitespace", input: "  Housing  ", want: "Housing"},
		{name: "unknown category", input: "Groceries", want: "Other"},
		{name: "empty", input: "", want: "Other"},
		{name: "other passes through", input: "Other", want: "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, NormalizeCategory(tt.input))
		})
	}
}

func TestCategoriesCatalog(t *testing.T) {
	t.Parallel()

	require.Len(t, Categories, 12)
	require.Contains(t, Categories, DefaultCategory)

	// Every catalog entry must survive normalization unchanged.
	for _, cat := range Categories {
		require.Equal(t, cat, NormalizeCategory(cat))
	}
}

func TestExpenseCandidateJSON(t *testing.T) {
	t.Parallel()

	candidate := ExpenseCandidate{
		IsExpense:   true,
		Description: "Taxi",
		Amount:      decimal.NewFromInt(20),
		Category:    "Transportation",
	}

	data, err := json.Marshal(candidate)
	require.NoError(t, err)
	require.JSONEq(t, `{"is_expense":true,"description":"Taxi","amount":"20","category":"Transportation"}`, string(data))
}
