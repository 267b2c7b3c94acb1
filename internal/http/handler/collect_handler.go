package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/lasroun/collectgate/internal/http/dto"
	"github.com/lasroun/collectgate/internal/service"
)

// CollectHandler handles collection HTTP requests
type CollectHandler struct {
	collectService *service.CollectService
	validator      *validator.Validate
	logger         *slog.Logger
}

// NewCollectHandler creates a new collect handler
func NewCollectHandler(
	collectService *service.CollectService,
	validator *validator.Validate,
	logger *slog.Logger,
) *CollectHandler {
	return &CollectHandler{
		collectService: collectService,
		validator:      validator,
		logger:         logger,
	}
}

// Create handles POST /v1/collect
func (h *CollectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCollectRequest

	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	result, err := h.collectService.InitCollect(r.Context(), service.InitCollectParams{
		Description: req.Description,
		Amount:      req.Amount,
		CurrencyISO: req.CurrencyISO,
		Customer: service.CustomerParams{
			Firstname:   req.Customer.Firstname,
			Lastname:    req.Customer.Lastname,
			Email:       req.Customer.Email,
			Phone:       req.Customer.Phone,
			CountryCode: req.Customer.CountryCode,
		},
	})
	if err != nil {
		h.logger.Warn("collect creation rejected", "error", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Pay handles POST /v1/collect/pay
func (h *CollectHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req dto.PayCollectRequest

	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationErrors(err))
		return
	}

	result, err := h.collectService.PayNow(r.Context(), service.PayNowParams{
		TransactionID: req.TransactionID,
		Phone:         req.Phone,
		Provider:      req.Provider,
		CountryCode:   req.CountryCode,
	})
	if err != nil {
		h.logger.Warn("payment dispatch rejected", "error", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// decodeJSON decodes a JSON request body. An empty body decodes to the
// zero value so field-level validation reports the real problem.
func decodeJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dest)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// respondJSON sends JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, dto.ErrorResponse{Error: message})
}

// formatValidationErrors formats validation errors
func formatValidationErrors(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "validation failed"
	}

	first := errs[0]
	switch first.Tag() {
	case "email":
		return first.Field() + " must be a valid email"
	case "max":
		return first.Field() + " is too long"
	default:
		return first.Field() + " is invalid"
	}
}
