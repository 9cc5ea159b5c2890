package payment

import (
	"math"
	"strings"
)

// HomeCurrency is used when a checkout omits the currency.
const HomeCurrency = "INR"

// maxAmountMinor keeps conversions far away from int64 overflow.
const maxAmountMinor = 1_000_000_000_000

var minorUnitFactors = map[string]int64{
	"INR": 100,
	"USD": 100,
	"EUR": 100,
	"GBP": 100,
	"SGD": 100,
	"AED": 100,
	"JPY": 1,
	"KWD": 1000,
	"BHD": 1000,
	"OMR": 1000,
}

// NormalizeCurrency upper-cases the code and applies the home currency default.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return HomeCurrency
	}
	return code
}

func MinorUnitFactor(currency string) (int64, bool) {
	f, ok := minorUnitFactors[currency]
	return f, ok
}

// ToMinorUnits converts a major-unit amount to round(amount * factor).
func ToMinorUnits(amount float64, currency string) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, newValidationError("amount", "amount must be a positive number")
	}

	factor, ok := MinorUnitFactor(currency)
	if !ok {
		return 0, newValidationError("currency", "unsupported currency "+currency)
	}

	minor := math.Round(amount * float64(factor))
	if minor < 1 {
		return 0, newValidationError("amount", "amount is smaller than the currency's minor unit")
	}
	if minor > maxAmountMinor {
		return 0, newValidationError("amount", "amount exceeds the maximum allowed")
	}
	return int64(minor), nil
}
