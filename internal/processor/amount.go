package processor

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencyPrefixes are the symbols stripped from the front of an amount
// string before parsing. Multi-rune symbols come first so "S$20" does not
// leave a stray "S".
var currencyPrefixes = []string{
	"US$", "NT$", "HK$", "NZ$", "S$", "A$", "RM", "Rp",
	"$", "€", "£", "¥", "₱", "₩", "₹", "฿", "₫",
}

// NormalizeAmount parses a free-form currency-bearing string into a decimal.
// It strips one leading currency symbol and internal thousands separators,
// then parses the remainder. Plain numeric input passes through unchanged.
// Any parse failure, and any negative result, yields zero; the function
// never returns an error.
func NormalizeAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}

	for _, prefix := range currencyPrefixes {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}

	// "1,234.50" -> "1234.50"
	s = strings.ReplaceAll(s, ",", "")

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}

	return amount
}
