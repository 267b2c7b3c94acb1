package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/lasroun/collectgate/internal/domain/collect"
	"github.com/lasroun/collectgate/internal/domain/provider"
	"github.com/lasroun/collectgate/internal/http/dto"
	"github.com/lasroun/collectgate/internal/http/handler"
	"github.com/lasroun/collectgate/internal/provider/fedapay"
	"github.com/lasroun/collectgate/internal/service"
)

const webhookSecret = "whsec_handler_tests"

// stubClient plays back canned FedaPay payloads.
type stubClient struct {
	createResponse   map[string]interface{}
	retrieveResponse map[string]interface{}
	tokenResponse    *provider.TokenResult

	createCalls int
}

func (s *stubClient) CreateTransaction(ctx context.Context, params provider.CreateTransactionParams) (map[string]interface{}, error) {
	s.createCalls++
	return s.createResponse, nil
}

func (s *stubClient) RetrieveTransaction(ctx context.Context, id string) (map[string]interface{}, error) {
	return s.retrieveResponse, nil
}

func (s *stubClient) GenerateToken(ctx context.Context, id string) (*provider.TokenResult, error) {
	return s.tokenResponse, nil
}

func (s *stubClient) SendNowWithToken(ctx context.Context, mode, token string, target provider.PayTarget) error {
	return nil
}

func newRouter(client provider.Client) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewCollectService(client, collect.EnvSandbox, webhookSecret, nil, logger)

	collectHandler := handler.NewCollectHandler(svc, validator.New(), logger)
	transactionHandler := handler.NewTransactionHandler(svc, logger)
	webhookHandler := handler.NewWebhookHandler(svc, logger)

	r := chi.NewRouter()
	r.Post("/v1/collect", collectHandler.Create)
	r.Post("/v1/collect/pay", collectHandler.Pay)
	r.Get("/v1/transaction/{id}", transactionHandler.GetByID)
	r.Post("/v1/webhook", webhookHandler.Handle)

	return r
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestCreateCollect(t *testing.T) {
	client := &stubClient{
		createResponse: map[string]interface{}{
			"id":     float64(1),
			"status": "pending",
			"amount": float64(1500),
			"currency": map[string]interface{}{
				"iso": "XOF",
			},
		},
	}
	router := newRouter(client)

	body := bytes.NewBufferString(`{"amount":1500,"customer":{"phone":"22990011222"}}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/collect", body))

	require.Equal(t, http.StatusOK, w.Code)

	var view struct {
		ID               string `json:"id"`
		FedapayStatus    string `json:"fedapayStatus"`
		NormalizedStatus string `json:"normalizedStatus"`
		Amount           int64  `json:"amount"`
		Currency         string `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Equal(t, "1", view.ID)
	require.Equal(t, "pending", view.FedapayStatus)
	require.Equal(t, "pending", view.NormalizedStatus)
	require.Equal(t, int64(1500), view.Amount)
	require.Equal(t, "XOF", view.Currency)
}

func TestCreateCollect_StringAmount(t *testing.T) {
	client := &stubClient{
		createResponse: map[string]interface{}{
			"id":     float64(2),
			"status": "pending",
			"amount": float64(250),
		},
	}
	router := newRouter(client)

	body := bytes.NewBufferString(`{"amount":"250","customer":{"phone":"22990011222"}}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/collect", body))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, client.createCalls)
}

func TestCreateCollect_InvalidAmount(t *testing.T) {
	client := &stubClient{}
	router := newRouter(client)

	for _, payload := range []string{
		`{"amount":0,"customer":{"phone":"22990011222"}}`,
		`{"amount":-5,"customer":{"phone":"22990011222"}}`,
		`{"amount":"abc","customer":{"phone":"22990011222"}}`,
		`{"customer":{"phone":"22990011222"}}`,
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/collect", bytes.NewBufferString(payload)))

		require.Equal(t, http.StatusBadRequest, w.Code, "payload %s", payload)
		require.Equal(t, "invalid amount", errorBody(t, w), "payload %s", payload)
	}
	require.Zero(t, client.createCalls)
}

func TestCreateCollect_MissingPhone(t *testing.T) {
	router := newRouter(&stubClient{})

	body := bytes.NewBufferString(`{"amount":1500}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/collect", body))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid phone number", errorBody(t, w))
}

func TestCreateCollect_MalformedJSON(t *testing.T) {
	router := newRouter(&stubClient{})

	body := bytes.NewBufferString(`{"amount":`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/collect", body))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid request body", errorBody(t, w))
}

func TestPayCollect(t *testing.T) {
	client := &stubClient{
		retrieveResponse: map[string]interface{}{"id": float64(9), "status": "pending"},
		tokenResponse:    &provider.TokenResult{Token: "tok_abc"},
	}
	router := newRouter(client)

	body := bytes.NewBufferString(`{"transactionId":"tx_9","phone":"22990011222","provider":"MTN"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/collect/pay", body))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK            bool   `json:"ok"`
		TransactionID string `json:"transactionId"`
		Mode          string `json:"mode"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.Equal(t, "tx_9", resp.TransactionID)
	require.Equal(t, "momo_test", resp.Mode)
}

func TestPayCollect_MissingTransactionID(t *testing.T) {
	router := newRouter(&stubClient{})

	// Missing id wins over the missing phone.
	body := bytes.NewBufferString(`{}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/collect/pay", body))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "transactionId is required", errorBody(t, w))
}

func TestGetTransaction(t *testing.T) {
	client := &stubClient{
		retrieveResponse: map[string]interface{}{
			"id":     float64(42),
			"status": "approved",
			"amount": float64(2000),
		},
	}
	router := newRouter(client)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/transaction/42", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var view struct {
		ID               string `json:"id"`
		NormalizedStatus string `json:"normalizedStatus"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Equal(t, "42", view.ID)
	require.Equal(t, "paid", view.NormalizedStatus)
}

func TestGetTransaction_BlankID(t *testing.T) {
	router := newRouter(&stubClient{})

	// Percent-encoded whitespace decodes then trims to nothing.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/transaction/%20%20", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "transactionId is required", errorBody(t, w))
}

func TestWebhook(t *testing.T) {
	router := newRouter(&stubClient{})

	payload := []byte(`{"name":"transaction.approved","data":{"transaction":{"id":389214,"status":"approved"}}}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	req := httptest.NewRequest(http.MethodPost, "/v1/webhook", bytes.NewReader(payload))
	req.Header.Set(fedapay.SignatureHeader, fedapay.BuildSignatureHeader(ts, payload, webhookSecret))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK            bool   `json:"ok"`
		Name          string `json:"name"`
		TransactionID string `json:"transactionId"`
		Status        string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.Equal(t, "transaction.approved", resp.Name)
	require.Equal(t, "389214", resp.TransactionID)
	require.Equal(t, "approved", resp.Status)
}

func TestWebhook_Rejections(t *testing.T) {
	router := newRouter(&stubClient{})
	payload := []byte(`{"name":"transaction.approved"}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/webhook", nil)
		req.Header.Set(fedapay.SignatureHeader, fedapay.BuildSignatureHeader(ts, nil, webhookSecret))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "webhook body is empty", errorBody(t, w))
	})

	t.Run("missing signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/webhook", bytes.NewReader(payload))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "webhook signature is missing", errorBody(t, w))
	})

	t.Run("bad signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/webhook", bytes.NewReader(payload))
		req.Header.Set(fedapay.SignatureHeader, fedapay.BuildSignatureHeader(ts, payload, "other_secret"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "invalid webhook signature", errorBody(t, w))
	})
}
