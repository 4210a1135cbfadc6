package processor

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gastobot/internal/models"
)

// ReportWindowHours is the trailing period covered by the /report command.
const ReportWindowHours = 24

// NoExpensesMessage is returned when the report window holds no expenses.
const NoExpensesMessage = "No expenses recorded in the last 24 hours."

// FormatReport renders a user's expense list into a human-readable summary
// with a computed total. The input is expected most-recent-first; ordering
// is the store's responsibility.
func FormatReport(expenses []models.Expense) string {
	if len(expenses) == 0 {
		return NoExpensesMessage
	}

	var b strings.Builder
	b.WriteString("📋 Expenses in the last 24 hours:\n\n")

	total := decimal.Zero
	for _, exp := range expenses {
		total = total.Add(exp.Amount)
		fmt.Fprintf(&b, "• %s: $%s (%s) - %s\n",
			exp.Description,
			formatAmount(exp.Amount),
			exp.Category,
			exp.AddedAt.Format("3:04 PM"),
		)
	}

	fmt.Fprintf(&b, "\nTotal: $%s", formatAmount(total))
	return b.String()
}

// formatAmount renders a decimal with two decimal places and thousands
// separators, e.g. 1234.5 -> "1,234.50".
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)

	return b.String()
}
