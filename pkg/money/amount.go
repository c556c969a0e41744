package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAmount   = errors.New("amount is required")
	ErrInvalidAmount = errors.New("invalid amount format")
)

// Parse converts user input such as "30", "0.5" or "$1,250.75" into a decimal.
// Scientific notation is rejected so the stored value is exactly what was typed.
func Parse(input string) (decimal.Decimal, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, input)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, input)
	}
	return d, nil
}

// Signed prefixes the amount's magnitude with "+" or "-".
// The magnitude is printed at its native precision, never rounded.
func Signed(amount decimal.Decimal, negative bool) string {
	if negative {
		return "-" + amount.Abs().String()
	}
	return "+" + amount.Abs().String()
}

// Dollars renders a balance for display, e.g. "$70" or "$12.5".
func Dollars(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Abs().String()
	}
	return "$" + amount.String()
}
