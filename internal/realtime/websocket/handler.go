package websocket

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS middleware in front.
		return true
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub    *Hub
	logger *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger,
	}
}

// HandlePayments handles GET /ws/payments. Clients either follow one
// transaction (?transaction_id=...) or the full event stream.
func (h *Handler) HandlePayments(w http.ResponseWriter, r *http.Request) {
	channel := ChannelAll
	if txID := strings.TrimSpace(r.URL.Query().Get("transaction_id")); txID != "" {
		channel = TransactionChannel(txID)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket", "error", err)
		return
	}

	client := NewClient(conn, h.hub, channel, h.logger)

	h.hub.register <- client
	client.SendWelcome()

	h.logger.Info("payment subscriber connected",
		"client_id", client.id,
		"channel", channel,
	)

	go client.WritePump()
	go client.ReadPump()
}
