// Package nutrition totals the calories of logged food entries.
package nutrition

import (
	"strconv"
	"strings"

	"github.com/baiirun/chew/internal/model"
)

// Amount reads the integer in a count or calorie token. Every non-digit is
// dropped first, so "2x" and "x2" both read as 2. Tokens without digits, and
// digit runs too large for an int, read as 0.
func Amount(token string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, token)
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// Contribution is what one item adds to the total: cal × count, or 0 for a
// done item.
func Contribution(item model.Item) int {
	if item.Done {
		return 0
	}
	return Amount(item.Cal) * Amount(item.Count)
}

// Total sums Contribution over items. It is a pure fold; callers recompute it
// whenever they need the current figure.
func Total(items []model.Item) int {
	total := 0
	for _, item := range items {
		total += Contribution(item)
	}
	return total
}

// isDigitFree reports whether a token holds no digit at all.
func isDigitFree(token string) bool {
	return strings.IndexAny(token, "0123456789") < 0
}

// Missing reports whether an item lacks the data to contribute to the total.
func Missing(item model.Item) bool {
	return isDigitFree(item.Cal) || isDigitFree(item.Count)
}
