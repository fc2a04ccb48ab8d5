package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a decimal string such as "4.30". Sign is preserved; callers decide
// whether non-positive values are an error or a no-op.
func ParseAmount(input string) (float64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	parsed := value.InexactFloat64()
	if !IsFinite(parsed) {
		return 0, ErrInvalidAmount
	}
	return parsed, nil
}

func IsFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func IsPositive(value float64) bool {
	return IsFinite(value) && value > 0
}

// Round2 rounds half away from zero to two decimal places.
func Round2(value float64) float64 {
	if !IsFinite(value) {
		return value
	}
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

// RoundUp returns the whole-unit charge for amount and the spare change between the two,
// rounded to cents.
func RoundUp(amount float64) (charge float64, increment float64) {
	charge = math.Ceil(amount)
	return charge, Round2(charge - amount)
}

func Format(value float64) string {
	if !IsFinite(value) {
		return "0.00"
	}
	return decimal.NewFromFloat(value).StringFixed(2)
}
