package fedapay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Webhook verification errors. Signature failures are deliberately
// message-poor so responses never help an attacker forge one.
var (
	ErrEmptyBody        = errors.New("webhook body is empty")
	ErrMissingSignature = errors.New("webhook signature is missing")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// SignatureHeader is the HTTP header carrying the FedaPay signature.
const SignatureHeader = "x-fedapay-signature"

// Event is a verified, parsed webhook notification. TransactionID and
// Status are best-effort extractions and may be empty; Name may be empty
// when the provider omits it. An Event is never produced unless the
// signature check passed.
type Event struct {
	Name          string
	TransactionID string
	Status        string
	Raw           map[string]interface{}
}

// ComputeSignature returns the hex HMAC-SHA256 of "<timestamp>.<body>"
// keyed with the webhook secret. This mirrors the signed payload FedaPay
// builds on its side, so it doubles as the signing primitive in tests.
func ComputeSignature(timestamp string, body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildSignatureHeader renders a header value in FedaPay's
// "t=<timestamp>,s=<signature>" format for the given body.
func BuildSignatureHeader(timestamp string, body []byte, secret string) string {
	return "t=" + timestamp + ",s=" + ComputeSignature(timestamp, body, secret)
}

// ConstructEvent authenticates a raw webhook delivery and parses it into
// an Event. Verification runs against the body exactly as received; the
// bytes must not have passed through any JSON re-serialization upstream,
// or signatures computed by the provider will never match.
func ConstructEvent(rawBody []byte, signatureHeader, secret string) (*Event, error) {
	if len(rawBody) == 0 || strings.TrimSpace(string(rawBody)) == "" {
		return nil, ErrEmptyBody
	}

	sig := strings.TrimSpace(signatureHeader)
	if sig == "" {
		return nil, ErrMissingSignature
	}

	if err := verifySignature(rawBody, sig, secret); err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, ErrMalformedPayload
	}

	event := &Event{Raw: payload}
	if name, ok := payload["name"].(string); ok {
		event.Name = name
	}
	event.TransactionID = probeField(payload, "id")
	event.Status = probeField(payload, "status")

	return event, nil
}

// verifySignature checks the "t=...,s=..." header against the raw bytes.
// The comparison is constant-time; any failure collapses to
// ErrInvalidSignature without further diagnostics.
func verifySignature(rawBody []byte, header, secret string) error {
	var timestamp string
	var candidates []string

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "s":
			candidates = append(candidates, value)
		}
	}

	if timestamp == "" || len(candidates) == 0 {
		return ErrInvalidSignature
	}

	expected := ComputeSignature(timestamp, rawBody, secret)
	for _, candidate := range candidates {
		if hmac.Equal([]byte(expected), []byte(candidate)) {
			return nil
		}
	}

	return ErrInvalidSignature
}

// payloadShapes are the known places a webhook may carry its transaction,
// in priority order. The first non-empty hit wins, independently per field,
// so an unconventional payload can still yield an id from one shape and a
// status from another.
var payloadShapes = [][]string{
	{"data", "transaction"},
	{"data"},
	{"resource"},
	{"transaction"},
}

func probeField(payload map[string]interface{}, field string) string {
	for _, path := range payloadShapes {
		node := payload
		ok := true
		for _, key := range path {
			node, ok = node[key].(map[string]interface{})
			if !ok {
				break
			}
		}
		if !ok {
			continue
		}
		if value := stringValue(node[field]); value != "" {
			return value
		}
	}
	return ""
}

// stringValue renders a scalar JSON value as a string. FedaPay ids are
// numeric, statuses are strings; both come through here.
func stringValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		if value == math.Trunc(value) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case json.Number:
		return value.String()
	default:
		return ""
	}
}
