package contribution

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/chama/pkg/apperr"
)

// Amount precision, matching NUMERIC(10, 2)
const (
	maxDigits        = 10
	maxDecimalPlaces = 2
	maxWholeDigits   = maxDigits - maxDecimalPlaces
)

// ParseAmount reads a fixed-point amount and enforces the column precision.
// Trailing zeros count as written, so "1.500" has three decimal places.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, apperr.Required("amount")
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, apperr.Invalid("amount", "must be a decimal number")
	}

	digits, decimals := precision(amount)
	switch {
	case decimals > maxDecimalPlaces:
		return decimal.Decimal{}, apperr.Invalid("amount", "must have at most 2 decimal places")
	case digits > maxDigits:
		return decimal.Decimal{}, apperr.Invalid("amount", "must have at most 10 digits in total")
	case digits-decimals > maxWholeDigits:
		return decimal.Decimal{}, apperr.Invalid("amount", "must have at most 8 digits before the decimal point")
	}

	return amount, nil
}

// precision returns the significant digit count and the number of decimal
// places of d as written.
func precision(d decimal.Decimal) (digits, decimals int) {
	coef := d.Coefficient()
	coef.Abs(coef)
	exp := int(d.Exponent())

	n := len(coef.String())
	if coef.Sign() == 0 {
		n = 0
	}

	if exp >= 0 {
		if n == 0 {
			return 0, 0
		}
		return n + exp, 0
	}

	decimals = -exp
	if decimals > n {
		return decimals, decimals
	}
	return n, decimals
}
