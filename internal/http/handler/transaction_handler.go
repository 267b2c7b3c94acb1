package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/lasroun/collectgate/internal/service"
)

// TransactionHandler handles transaction lookup requests
type TransactionHandler struct {
	collectService *service.CollectService
	logger         *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(collectService *service.CollectService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		collectService: collectService,
		logger:         logger,
	}
}

// GetByID handles GET /v1/transaction/{id}
func (h *TransactionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if decoded, err := url.PathUnescape(id); err == nil {
		id = decoded
	}

	result, err := h.collectService.GetTransaction(r.Context(), id)
	if err != nil {
		h.logger.Warn("transaction lookup failed", "transaction_id", id, "error", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}
