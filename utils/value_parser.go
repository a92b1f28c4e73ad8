package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyBalance is returned for blank OCR text.
	ErrEmptyBalance = errors.New("balance text is empty")
	// ErrUnparsableBalance is returned when no number can be read from the text.
	ErrUnparsableBalance = errors.New("cannot parse balance")

	balancePattern = regexp.MustCompile(`([\d.]+)([KMКМ])?`)
	thousand       = decimal.NewFromInt(1_000)
	million        = decimal.NewFromInt(1_000_000)
)

// ParseBalance reads OCR balance text such as "1.23M", "456,5 к" or "1425K".
// K values of 1000 or more are treated as a lost decimal point ("1425K" -> 142.5K)
// because the game switches to M at 1000K.
func ParseBalance(input string) (decimal.Decimal, error) {
	if strings.TrimSpace(input) == "" {
		return decimal.Zero, ErrEmptyBalance
	}
	norm := strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(input, " ", ""), ",", "."))
	m := balancePattern.FindStringSubmatch(norm)
	if m == nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparsableBalance, input)
	}
	base, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparsableBalance, input)
	}

	switch m[2] {
	case "K", "К":
		for base.GreaterThanOrEqual(thousand) {
			base = base.Shift(-1)
		}
		return base.Mul(thousand), nil
	case "M", "М":
		return base.Mul(million), nil
	}
	return base, nil
}

// FormatBalance renders a value with an M or K suffix and two decimals.
func FormatBalance(v decimal.Decimal) string {
	abs := v.Abs()
	switch {
	case abs.GreaterThanOrEqual(million):
		return v.Div(million).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return v.Div(thousand).StringFixed(2) + "K"
	default:
		return v.StringFixed(2)
	}
}

// FormatProfitLoss is FormatBalance with an explicit "+" for non-negative values.
func FormatProfitLoss(v decimal.Decimal) string {
	if v.Sign() >= 0 {
		return "+" + FormatBalance(v)
	}
	return FormatBalance(v)
}
