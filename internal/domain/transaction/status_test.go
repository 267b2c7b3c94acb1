package transaction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_Mapping(t *testing.T) {
	cases := []struct {
		in   string
		want NormalizedStatus
	}{
		{"pending", StatusPending},
		{"approved", StatusPaid},
		{"transferred", StatusPaid},
		{"declined", StatusFailed},
		{"canceled", StatusCanceled},
		{"expired", StatusExpired},
		{"refunded", StatusRefunded},
	}

	for _, c := range cases {
		got, err := Normalize(c.in)
		require.NoError(t, err, "status %q", c.in)
		require.Equal(t, c.want, got, "status %q", c.in)
	}
}

func TestNormalize_CaseAndWhitespace(t *testing.T) {
	got, err := Normalize("  APPROVED ")
	require.NoError(t, err)
	require.Equal(t, StatusPaid, got)

	got, err = Normalize("Pending")
	require.NoError(t, err)
	require.Equal(t, StatusPending, got)
}

func TestNormalize_Unknown(t *testing.T) {
	for _, in := range []string{"", "   ", "processing", "ok", "cancelled"} {
		_, err := Normalize(in)
		require.Error(t, err, "status %q", in)
		require.True(t, errors.Is(err, ErrUnknownProviderStatus), "status %q", in)
	}

	// The offending value survives in the message for diagnostics.
	_, err := Normalize("processing")
	require.Contains(t, err.Error(), "processing")
}
