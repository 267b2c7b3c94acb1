package fedapay

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func signedHeader(t *testing.T, body []byte) string {
	t.Helper()
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	return BuildSignatureHeader(ts, body, testSecret)
}

func TestConstructEvent_ValidSignature(t *testing.T) {
	body := []byte(`{"name":"transaction.approved","data":{"transaction":{"id":389214,"status":"approved"}}}`)

	event, err := ConstructEvent(body, signedHeader(t, body), testSecret)
	require.NoError(t, err)
	require.Equal(t, "transaction.approved", event.Name)
	require.Equal(t, "389214", event.TransactionID)
	require.Equal(t, "approved", event.Status)
	require.NotNil(t, event.Raw)
}

func TestConstructEvent_EmptyBody(t *testing.T) {
	// Body emptiness is checked before the signature is even looked at.
	_, err := ConstructEvent(nil, "", testSecret)
	require.True(t, errors.Is(err, ErrEmptyBody))

	_, err = ConstructEvent([]byte("   "), signedHeader(t, []byte("   ")), testSecret)
	require.True(t, errors.Is(err, ErrEmptyBody))
}

func TestConstructEvent_MissingSignature(t *testing.T) {
	body := []byte(`{"name":"transaction.created"}`)

	_, err := ConstructEvent(body, "", testSecret)
	require.True(t, errors.Is(err, ErrMissingSignature))

	_, err = ConstructEvent(body, "   ", testSecret)
	require.True(t, errors.Is(err, ErrMissingSignature))
}

func TestConstructEvent_TamperedBody(t *testing.T) {
	body := []byte(`{"name":"transaction.approved","data":{"id":1,"status":"approved"}}`)
	header := signedHeader(t, body)

	tampered := make([]byte, len(body))
	copy(tampered, body)
	tampered[len(tampered)-2] ^= 1

	_, err := ConstructEvent(tampered, header, testSecret)
	require.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestConstructEvent_TamperedSignature(t *testing.T) {
	body := []byte(`{"name":"transaction.approved"}`)
	header := signedHeader(t, body)

	mutated := []byte(header)
	last := mutated[len(mutated)-1]
	if last == '0' {
		mutated[len(mutated)-1] = '1'
	} else {
		mutated[len(mutated)-1] = '0'
	}

	_, err := ConstructEvent(body, string(mutated), testSecret)
	require.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestConstructEvent_WrongSecret(t *testing.T) {
	body := []byte(`{"name":"transaction.approved"}`)
	header := signedHeader(t, body)

	_, err := ConstructEvent(body, header, "whsec_other")
	require.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestConstructEvent_MalformedHeader(t *testing.T) {
	body := []byte(`{"name":"x"}`)

	for _, header := range []string{"garbage", "t=123", "s=deadbeef", "t=,s="} {
		_, err := ConstructEvent(body, header, testSecret)
		require.True(t, errors.Is(err, ErrInvalidSignature), "header %q", header)
	}
}

func TestConstructEvent_MalformedPayload(t *testing.T) {
	body := []byte(`{"name": "truncated`)

	_, err := ConstructEvent(body, signedHeader(t, body), testSecret)
	require.True(t, errors.Is(err, ErrMalformedPayload))
}

func TestConstructEvent_PayloadShapes(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		wantID     string
		wantStatus string
	}{
		{
			name:       "data.transaction wins over data",
			body:       `{"data":{"id":1,"status":"pending","transaction":{"id":2,"status":"approved"}}}`,
			wantID:     "2",
			wantStatus: "approved",
		},
		{
			name:       "data fallback",
			body:       `{"data":{"id":7,"status":"declined"}}`,
			wantID:     "7",
			wantStatus: "declined",
		},
		{
			name:       "resource fallback",
			body:       `{"resource":{"id":"tx_9","status":"canceled"}}`,
			wantID:     "tx_9",
			wantStatus: "canceled",
		},
		{
			name:       "top-level transaction fallback",
			body:       `{"transaction":{"id":11,"status":"expired"}}`,
			wantID:     "11",
			wantStatus: "expired",
		},
		{
			name:       "fields resolved independently",
			body:       `{"data":{"transaction":{"id":5}},"resource":{"status":"refunded"}}`,
			wantID:     "5",
			wantStatus: "refunded",
		},
		{
			name:       "nothing extractable",
			body:       `{"name":"transaction.created"}`,
			wantID:     "",
			wantStatus: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body := []byte(c.body)
			event, err := ConstructEvent(body, signedHeader(t, body), testSecret)
			require.NoError(t, err)
			require.Equal(t, c.wantID, event.TransactionID)
			require.Equal(t, c.wantStatus, event.Status)
		})
	}
}

func TestComputeSignature_Deterministic(t *testing.T) {
	body := []byte(`{"a":1}`)

	first := ComputeSignature("1700000000", body, testSecret)
	second := ComputeSignature("1700000000", body, testSecret)
	require.Equal(t, first, second)
	require.Len(t, first, 64)

	// A different timestamp signs a different payload.
	require.NotEqual(t, first, ComputeSignature("1700000001", body, testSecret))
}
