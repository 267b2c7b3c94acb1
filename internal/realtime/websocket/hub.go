package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	redisRepo "github.com/lasroun/collectgate/internal/repository/redis"
)

// ChannelAll is the firehose channel carrying every payment event.
// Per-transaction subscribers use "tx:<id>" channels instead.
const ChannelAll = "payments"

// Hub maintains the set of active clients and broadcasts payment events
// to them. Events arrive over Redis pub/sub so every instance behind a
// load balancer sees every webhook.
type Hub struct {
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	pubsub *redisRepo.PubSub
	logger *slog.Logger

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	Channel string
	Message []byte
}

// NewHub creates a new Hub
func NewHub(pubsub *redisRepo.PubSub, logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 256),
		pubsub:     pubsub,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the hub
func (h *Hub) Run() {
	go h.subscribeToEvents()

	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastToChannel(msg)
		}
	}
}

// Stop gracefully stops the hub
func (h *Hub) Stop() {
	h.cancel()
}

// registerClient adds a client to a channel
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.channel] == nil {
		h.clients[client.channel] = make(map[*Client]bool)
	}
	h.clients[client.channel][client] = true

	h.logger.Debug("client registered",
		"channel", client.channel,
		"client_id", client.id,
		"clients_in_channel", len(h.clients[client.channel]),
	)
}

// unregisterClient removes a client from its channel
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.channel]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.clients, client.channel)
			}

			h.logger.Debug("client unregistered",
				"channel", client.channel,
				"client_id", client.id,
			)
		}
	}
}

// broadcastToChannel sends message to all clients in a channel
func (h *Hub) broadcastToChannel(msg *BroadcastMessage) {
	h.mu.RLock()
	clients, ok := h.clients[msg.Channel]
	h.mu.RUnlock()

	if !ok {
		return
	}

	for client := range clients {
		select {
		case client.send <- msg.Message:
		default:
			// Client buffer full, unregister
			h.unregister <- client
		}
	}
}

// BroadcastPayment pushes a payment event to the firehose channel and to
// the channel scoped to its transaction, if the event carries one.
func (h *Hub) BroadcastPayment(event *redisRepo.PaymentEvent) {
	msg := OutgoingMessage{
		Type:      "payment",
		Timestamp: time.Now().Format(time.RFC3339),
		Data: map[string]interface{}{
			"name":           event.Name,
			"transaction_id": event.TransactionID,
			"status":         event.Status,
			"received_at":    event.ReceivedAt,
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal payment event", "error", err)
		return
	}

	h.broadcast <- &BroadcastMessage{Channel: ChannelAll, Message: data}

	if event.TransactionID != "" {
		h.broadcast <- &BroadcastMessage{
			Channel: TransactionChannel(event.TransactionID),
			Message: data,
		}
	}
}

// TransactionChannel names the channel scoped to one transaction.
func TransactionChannel(transactionID string) string {
	return "tx:" + transactionID
}

// subscribeToEvents subscribes to payment events from Redis
func (h *Hub) subscribeToEvents() {
	err := h.pubsub.SubscribePayments(h.ctx, func(event *redisRepo.PaymentEvent) {
		h.BroadcastPayment(event)
	})

	if err != nil {
		h.logger.Error("failed to subscribe to payment events", "error", err)
	}
}

// GetClientCount returns the number of clients in a channel
func (h *Hub) GetClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[channel]; ok {
		return len(clients)
	}
	return 0
}
