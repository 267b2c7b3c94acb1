package fedapay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lasroun/collectgate/internal/config"
	"github.com/lasroun/collectgate/internal/domain/provider"
)

const (
	sandboxURL = "https://sandbox-api.fedapay.com"
	liveURL    = "https://api.fedapay.com"
)

// Client implements the FedaPay payment provider over HTTP.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ provider.Client = (*Client)(nil)

// NewClient creates a new FedaPay client
func NewClient(cfg config.FedaPayConfig) *Client {
	baseURL := sandboxURL
	if cfg.Environment.IsLive() {
		baseURL = liveURL
	}
	if cfg.APIURL != "" {
		baseURL = cfg.APIURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateTransaction creates a collection transaction
func (c *Client) CreateTransaction(ctx context.Context, params provider.CreateTransactionParams) (map[string]interface{}, error) {
	body := map[string]interface{}{
		"description": params.Description,
		"amount":      params.Amount,
		"currency": map[string]interface{}{
			"iso": params.CurrencyISO,
		},
		"customer": map[string]interface{}{
			"firstname": params.Customer.Firstname,
			"lastname":  params.Customer.Lastname,
			"email":     params.Customer.Email,
			"phone_number": map[string]interface{}{
				"number":  params.Customer.Phone,
				"country": params.Customer.CountryCode,
			},
		},
	}
	if params.Reference != "" {
		body["merchant_reference"] = params.Reference
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/transactions", body)
	if err != nil {
		return nil, err
	}

	return unwrapEntity(resp), nil
}

// RetrieveTransaction fetches a transaction by id
func (c *Client) RetrieveTransaction(ctx context.Context, id string) (map[string]interface{}, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/transactions/"+id, nil)
	if err != nil {
		return nil, err
	}

	return unwrapEntity(resp), nil
}

// GenerateToken issues a one-time payment token for a transaction
func (c *Client) GenerateToken(ctx context.Context, id string) (*provider.TokenResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/transactions/"+id+"/token", nil)
	if err != nil {
		return nil, err
	}

	result := &provider.TokenResult{Raw: resp}
	if token, ok := resp["token"].(string); ok {
		result.Token = token
	}
	return result, nil
}

// SendNowWithToken dispatches the payment over a mobile-money channel.
// FedaPay exposes each channel as its own endpoint, e.g. POST /v1/mtn_open.
func (c *Client) SendNowWithToken(ctx context.Context, mode, token string, target provider.PayTarget) error {
	body := map[string]interface{}{
		"token": token,
		"phone_number": map[string]interface{}{
			"number":  target.Number,
			"country": target.Country,
		},
	}

	_, err := c.doRequest(ctx, http.MethodPost, "/v1/"+mode, body)
	return err
}

// doRequest makes an HTTP request to the FedaPay API
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}) (map[string]interface{}, error) {
	url := c.baseURL + endpoint

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result map[string]interface{}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		errMsg := "unknown error"
		if msg, ok := result["message"].(string); ok && msg != "" {
			errMsg = msg
		}
		return nil, fmt.Errorf("fedapay error (%d): %s", resp.StatusCode, errMsg)
	}

	return result, nil
}

// unwrapEntity strips the FedaPay envelope. Single entities come back
// nested under a "v1/<name>" key ({"v1/transaction": {...}}).
func unwrapEntity(resp map[string]interface{}) map[string]interface{} {
	for key, value := range resp {
		if strings.HasPrefix(key, "v1/") {
			if entity, ok := value.(map[string]interface{}); ok {
				return entity
			}
		}
	}
	return resp
}
