package provider

import (
	"context"
)

// Customer identifies who is being charged. All fields are normalized
// before they reach the client.
type Customer struct {
	Firstname   string
	Lastname    string
	Email       string
	Phone       string
	CountryCode string
}

// CreateTransactionParams holds the request to create a collection
// transaction with the remote provider.
type CreateTransactionParams struct {
	Description string
	Amount      int64
	CurrencyISO string
	Reference   string
	Customer    Customer
}

// TokenResult holds a one-time payment token issued against a
// transaction. The provider may omit the token.
type TokenResult struct {
	Token string
	Raw   map[string]interface{}
}

// PayTarget is the mobile-money account a payment is dispatched to.
type PayTarget struct {
	Number  string
	Country string
}

// Client is the remote payment-provider collaborator consumed by the
// orchestrator. Implementations return the provider payload as-is;
// status interpretation happens upstream. Remote failures are surfaced
// verbatim, retries are the caller's business.
type Client interface {
	// CreateTransaction creates a collection transaction.
	CreateTransaction(ctx context.Context, params CreateTransactionParams) (map[string]interface{}, error)

	// RetrieveTransaction fetches a transaction by id. Unknown ids fail.
	RetrieveTransaction(ctx context.Context, id string) (map[string]interface{}, error)

	// GenerateToken issues a one-time payment token for a transaction.
	GenerateToken(ctx context.Context, id string) (*TokenResult, error)

	// SendNowWithToken dispatches the payment over the given channel.
	SendNowWithToken(ctx context.Context, mode, token string, target PayTarget) error
}
