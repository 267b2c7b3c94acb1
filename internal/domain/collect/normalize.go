package collect

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Validation errors. Handlers branch on these with errors.Is; the message
// is what ends up in the API error body.
var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidPhone         = errors.New("invalid phone number")
	ErrMissingTransactionID = errors.New("transactionId is required")
)

// DefaultCountryCode is applied when the caller does not supply one.
const DefaultCountryCode = "bj"

// NormalizeAmount coerces a raw amount into a positive integer number of
// minor units. Accepts numbers and numeric strings, rejects zero, negatives
// and anything non-finite. Fractional amounts are rounded half away from zero.
func NormalizeAmount(raw interface{}) (int64, error) {
	var n float64

	switch v := raw.(type) {
	case nil:
		return 0, ErrInvalidAmount
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		n = parsed
	default:
		return 0, ErrInvalidAmount
	}

	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0, ErrInvalidAmount
	}

	return int64(math.Round(n)), nil
}

// NormalizePhone trims the phone number. Carrier-level validity is the
// provider's concern, only emptiness is rejected here.
func NormalizePhone(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", ErrInvalidPhone
	}
	return p, nil
}

// NormalizeCountryCode trims and lower-cases the ISO country code,
// defaulting to "bj". Never fails.
func NormalizeCountryCode(raw string) string {
	cc := strings.ToLower(strings.TrimSpace(raw))
	if cc == "" {
		return DefaultCountryCode
	}
	return cc
}

// NormalizeProviderName trims and upper-cases the mobile-money provider
// name. Empty means "unspecified", which is only an error once live mode
// selection happens.
func NormalizeProviderName(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// NormalizeTransactionID trims the transaction identifier and rejects
// empty results.
func NormalizeTransactionID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", ErrMissingTransactionID
	}
	return id, nil
}
