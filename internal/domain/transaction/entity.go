package transaction

// Transaction is the view returned to callers after a create or retrieve.
// It lives for one request; FedaPay remains the source of truth, so the
// full provider payload rides along for forward-compatibility.
type Transaction struct {
	ID               string                 `json:"id"`
	ProviderStatus   ProviderStatus         `json:"fedapayStatus"`
	NormalizedStatus NormalizedStatus       `json:"normalizedStatus"`
	Amount           int64                  `json:"amount"`
	Currency         string                 `json:"currency"`
	Raw              map[string]interface{} `json:"raw"`
}
