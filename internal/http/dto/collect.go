package dto

// CreateCollectRequest is the payload for POST /v1/collect. Amount stays
// loosely typed on purpose: the original API accepts numbers and numeric
// strings alike, and the core normalization owns the rejection rules.
type CreateCollectRequest struct {
	Description string          `json:"description" validate:"max=255"`
	Amount      interface{}     `json:"amount"`
	CurrencyISO string          `json:"currencyIso" validate:"max=8"`
	Customer    CustomerRequest `json:"customer"`
}

// CustomerRequest carries the customer sub-record of a collection.
type CustomerRequest struct {
	Firstname   string `json:"firstname" validate:"max=100"`
	Lastname    string `json:"lastname" validate:"max=100"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	Phone       string `json:"phone" validate:"max=32"`
	CountryCode string `json:"countryCode" validate:"max=8"`
}

// PayCollectRequest is the payload for POST /v1/collect/pay.
type PayCollectRequest struct {
	TransactionID string `json:"transactionId" validate:"max=64"`
	Phone         string `json:"phone" validate:"max=32"`
	Provider      string `json:"provider" validate:"max=32"`
	CountryCode   string `json:"countryCode" validate:"max=8"`
}

// ErrorResponse is the single-line error body every failed call gets.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
