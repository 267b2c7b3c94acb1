package collect

import (
	"errors"
	"fmt"
)

// Environment is the FedaPay deployment environment.
type Environment string

const (
	EnvSandbox Environment = "sandbox"
	EnvLive    Environment = "live"
)

// IsLive reports whether real money moves in this environment.
func (e Environment) IsLive() bool {
	return e == EnvLive
}

// ErrInvalidProvider is returned when live mode is requested with a
// provider outside the supported set.
var ErrInvalidProvider = errors.New("invalid provider")

// ModeTest is the provider-agnostic sandbox payment channel.
const ModeTest = "momo_test"

// Live payment channels per mobile-money provider.
var liveModes = map[string]string{
	"MTN":     "mtn_open",
	"MOOV":    "moov",
	"CELTIIS": "celtiis_benin",
}

// SelectPaymentMode derives the FedaPay payment channel. Sandbox always
// uses the test channel regardless of provider, so testing is never
// blocked by provider selection. Live requires one of MTN, MOOV, CELTIIS.
func SelectPaymentMode(env Environment, providerName string) (string, error) {
	if !env.IsLive() {
		return ModeTest, nil
	}

	mode, ok := liveModes[NormalizeProviderName(providerName)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidProvider, providerName)
	}
	return mode, nil
}
