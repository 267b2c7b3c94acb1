package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/lasroun/collectgate/internal/provider/fedapay"
	"github.com/lasroun/collectgate/internal/service"
)

// WebhookHandler handles FedaPay webhook callbacks.
type WebhookHandler struct {
	collectService *service.CollectService
	logger         *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(collectService *service.CollectService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		collectService: collectService,
		logger:         logger,
	}
}

// Handle handles POST /v1/webhook. The body is read raw and handed to
// verification untouched: no JSON middleware may sit in front of this
// route, signatures only match the exact bytes FedaPay sent.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	signature := r.Header.Get(fedapay.SignatureHeader)

	result, err := h.collectService.HandleWebhook(r.Context(), rawBody, signature)
	if err != nil {
		h.logger.Warn("webhook rejected", "error", err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}
