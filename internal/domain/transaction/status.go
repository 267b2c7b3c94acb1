package transaction

import (
	"errors"
	"fmt"
	"strings"
)

// ProviderStatus is a transaction status as reported by FedaPay.
// Produced only by the remote service, never set locally.
type ProviderStatus string

const (
	ProviderPending     ProviderStatus = "pending"
	ProviderApproved    ProviderStatus = "approved"
	ProviderDeclined    ProviderStatus = "declined"
	ProviderCanceled    ProviderStatus = "canceled"
	ProviderExpired     ProviderStatus = "expired"
	ProviderTransferred ProviderStatus = "transferred"
	ProviderRefunded    ProviderStatus = "refunded"
)

// NormalizedStatus is the provider-agnostic status vocabulary exposed to
// all consumers.
type NormalizedStatus string

const (
	StatusPending  NormalizedStatus = "pending"
	StatusPaid     NormalizedStatus = "paid"
	StatusFailed   NormalizedStatus = "failed"
	StatusCanceled NormalizedStatus = "canceled"
	StatusExpired  NormalizedStatus = "expired"
	StatusRefunded NormalizedStatus = "refunded"
)

// ErrUnknownProviderStatus is returned for any status outside the FedaPay
// vocabulary, including the empty string.
var ErrUnknownProviderStatus = errors.New("unknown provider status")

// Normalize maps a FedaPay status to the internal vocabulary. Input is
// trimmed and lower-cased before lookup. The mapping is total over the
// known provider domain; anything else fails with the offending value
// attached for diagnostics.
func Normalize(providerStatus string) (NormalizedStatus, error) {
	s := ProviderStatus(strings.ToLower(strings.TrimSpace(providerStatus)))

	switch s {
	case ProviderPending:
		return StatusPending, nil
	case ProviderApproved, ProviderTransferred:
		return StatusPaid, nil
	case ProviderDeclined:
		return StatusFailed, nil
	case ProviderCanceled:
		return StatusCanceled, nil
	case ProviderExpired:
		return StatusExpired, nil
	case ProviderRefunded:
		return StatusRefunded, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProviderStatus, providerStatus)
	}
}
