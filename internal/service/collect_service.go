package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lasroun/collectgate/internal/domain/collect"
	"github.com/lasroun/collectgate/internal/domain/provider"
	"github.com/lasroun/collectgate/internal/domain/transaction"
	"github.com/lasroun/collectgate/internal/provider/fedapay"
	redisRepo "github.com/lasroun/collectgate/internal/repository/redis"
)

// Orchestration errors for incomplete provider responses.
var (
	ErrMissingRemoteStatus = errors.New("transaction status missing from provider response")
	ErrMissingToken        = errors.New("payment token missing from provider response")
)

// Customer defaults applied when the caller omits optional fields.
const (
	defaultDescription = "descr - XXXXX"
	defaultFirstname   = "Client"
	defaultLastname    = "LASROUN"
	defaultEmail       = "client@lasroun.com"
	defaultCurrencyISO = "XOF"
)

// CollectService orchestrates payment collection: it normalizes caller
// input, talks to FedaPay, and translates provider state into the
// normalized vocabulary. It is stateless; everything it returns lives for
// one request.
type CollectService struct {
	client        provider.Client
	env           collect.Environment
	webhookSecret string
	pubsub        *redisRepo.PubSub
	logger        *slog.Logger
}

// NewCollectService creates a new collect service. pubsub may be nil when
// real-time fan-out is not wanted (tests, one-shot tools).
func NewCollectService(
	client provider.Client,
	env collect.Environment,
	webhookSecret string,
	pubsub *redisRepo.PubSub,
	logger *slog.Logger,
) *CollectService {
	return &CollectService{
		client:        client,
		env:           env,
		webhookSecret: webhookSecret,
		pubsub:        pubsub,
		logger:        logger,
	}
}

// CustomerParams holds raw customer fields from the caller.
type CustomerParams struct {
	Firstname   string
	Lastname    string
	Email       string
	Phone       string
	CountryCode string
}

// InitCollectParams holds raw input for creating a collection. Amount is
// kept loosely typed so numeric strings coerce the same way numbers do.
type InitCollectParams struct {
	Description string
	Amount      interface{}
	CurrencyISO string
	Customer    CustomerParams
}

// InitCollect creates a collection transaction with FedaPay and returns
// the normalized view. All validation happens before any remote call.
func (s *CollectService) InitCollect(ctx context.Context, params InitCollectParams) (*transaction.Transaction, error) {
	amount, err := collect.NormalizeAmount(params.Amount)
	if err != nil {
		return nil, err
	}

	phone, err := collect.NormalizePhone(params.Customer.Phone)
	if err != nil {
		return nil, err
	}

	description := params.Description
	if description == "" {
		description = defaultDescription
	}

	currency := strings.ToUpper(strings.TrimSpace(params.CurrencyISO))
	if currency == "" {
		currency = defaultCurrencyISO
	}

	raw, err := s.client.CreateTransaction(ctx, provider.CreateTransactionParams{
		Description: description,
		Amount:      amount,
		CurrencyISO: currency,
		Reference:   uuid.New().String(),
		Customer: provider.Customer{
			Firstname:   stringOrDefault(params.Customer.Firstname, defaultFirstname),
			Lastname:    stringOrDefault(params.Customer.Lastname, defaultLastname),
			Email:       stringOrDefault(params.Customer.Email, defaultEmail),
			Phone:       phone,
			CountryCode: collect.NormalizeCountryCode(params.Customer.CountryCode),
		},
	})
	if err != nil {
		return nil, err
	}

	view, err := buildView(raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("collection created",
		"transaction_id", view.ID,
		"amount", view.Amount,
		"status", view.ProviderStatus,
	)

	return view, nil
}

// PayNowParams holds raw input for dispatching a payment.
type PayNowParams struct {
	TransactionID string
	Phone         string
	Provider      string
	CountryCode   string
}

// PayNowResult confirms a dispatched payment request.
type PayNowResult struct {
	OK            bool   `json:"ok"`
	TransactionID string `json:"transactionId"`
	Mode          string `json:"mode"`
}

// PayNow retrieves the transaction, obtains a one-time token and
// dispatches the payment over the selected mobile-money channel.
// The transactionId check runs before the phone check so error reporting
// stays deterministic.
func (s *CollectService) PayNow(ctx context.Context, params PayNowParams) (*PayNowResult, error) {
	id, err := collect.NormalizeTransactionID(params.TransactionID)
	if err != nil {
		return nil, err
	}

	phone, err := collect.NormalizePhone(params.Phone)
	if err != nil {
		return nil, err
	}

	if _, err := s.client.RetrieveTransaction(ctx, id); err != nil {
		return nil, err
	}

	tokenResult, err := s.client.GenerateToken(ctx, id)
	if err != nil {
		return nil, err
	}
	if tokenResult == nil || tokenResult.Token == "" {
		return nil, ErrMissingToken
	}

	mode, err := collect.SelectPaymentMode(s.env, params.Provider)
	if err != nil {
		return nil, err
	}

	err = s.client.SendNowWithToken(ctx, mode, tokenResult.Token, provider.PayTarget{
		Number:  phone,
		Country: collect.NormalizeCountryCode(params.CountryCode),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment dispatched",
		"transaction_id", id,
		"mode", mode,
	)

	return &PayNowResult{OK: true, TransactionID: id, Mode: mode}, nil
}

// GetTransaction fetches a transaction from FedaPay and returns the
// normalized view.
func (s *CollectService) GetTransaction(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	id, err := collect.NormalizeTransactionID(transactionID)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.RetrieveTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	return buildView(raw)
}

// WebhookResult is the verified webhook outcome surfaced to the boundary.
type WebhookResult struct {
	OK            bool                   `json:"ok"`
	Name          string                 `json:"name,omitempty"`
	TransactionID string                 `json:"transactionId,omitempty"`
	Status        string                 `json:"status,omitempty"`
	Raw           map[string]interface{} `json:"raw"`
}

// HandleWebhook verifies and parses an inbound FedaPay notification. An
// embedded status is re-validated through the status mapper, so an
// unrecognized label fails the whole call instead of passing through.
// Verified events are fanned out to real-time subscribers best-effort.
func (s *CollectService) HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) (*WebhookResult, error) {
	event, err := fedapay.ConstructEvent(rawBody, signatureHeader, s.webhookSecret)
	if err != nil {
		return nil, err
	}

	if event.Status != "" {
		if _, err := transaction.Normalize(event.Status); err != nil {
			return nil, err
		}
	}

	if s.pubsub != nil {
		publishErr := s.pubsub.PublishPaymentEvent(ctx, &redisRepo.PaymentEvent{
			Type:          "payment_update",
			Name:          event.Name,
			TransactionID: event.TransactionID,
			Status:        event.Status,
			ReceivedAt:    time.Now().Format(time.RFC3339),
		})
		if publishErr != nil {
			// The webhook itself succeeded; losing a push is not fatal.
			s.logger.Error("failed to publish payment event", "error", publishErr)
		}
	}

	s.logger.Info("webhook processed",
		"event", event.Name,
		"transaction_id", event.TransactionID,
		"status", event.Status,
	)

	return &WebhookResult{
		OK:            true,
		Name:          event.Name,
		TransactionID: event.TransactionID,
		Status:        event.Status,
		Raw:           event.Raw,
	}, nil
}

// buildView turns a raw provider payload into the Transaction view,
// guarding against responses that lack a status.
func buildView(raw map[string]interface{}) (*transaction.Transaction, error) {
	status, _ := raw["status"].(string)
	if strings.TrimSpace(status) == "" {
		return nil, ErrMissingRemoteStatus
	}

	normalized, err := transaction.Normalize(status)
	if err != nil {
		return nil, err
	}

	view := &transaction.Transaction{
		ID:               fieldString(raw["id"]),
		ProviderStatus:   transaction.ProviderStatus(status),
		NormalizedStatus: normalized,
		Raw:              raw,
	}

	if amount, ok := raw["amount"].(float64); ok {
		view.Amount = int64(math.Round(amount))
	}

	if currency, ok := raw["currency"].(map[string]interface{}); ok {
		view.Currency, _ = currency["iso"].(string)
	}

	return view, nil
}

// stringOrDefault returns the trimmed value or the fallback when empty.
func stringOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

// fieldString renders a provider identifier, which may arrive as a JSON
// number or a string depending on the endpoint.
func fieldString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
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
