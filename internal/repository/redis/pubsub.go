package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// PubSub channels
const (
	ChannelPayments = "payments:events"
)

// PubSub provides Redis pub/sub functionality
type PubSub struct {
	client *redis.Client
	logger *slog.Logger
}

// NewPubSub creates a new Redis pub/sub client
func NewPubSub(client *redis.Client, logger *slog.Logger) *PubSub {
	return &PubSub{
		client: client,
		logger: logger,
	}
}

// Publish publishes a message to a channel
func (p *PubSub) Publish(ctx context.Context, channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Debug("published message", "channel", channel)
	return nil
}

// Subscribe subscribes to channels and returns the subscription
func (p *PubSub) Subscribe(ctx context.Context, channels ...string) *Subscription {
	pubsub := p.client.Subscribe(ctx, channels...)
	return &Subscription{
		pubsub: pubsub,
		logger: p.logger,
	}
}

// Subscription represents a subscription to Redis channels
type Subscription struct {
	pubsub *redis.PubSub
	logger *slog.Logger
}

// Channel returns the message channel
func (s *Subscription) Channel() <-chan *redis.Message {
	return s.pubsub.Channel()
}

// Close closes the subscription
func (s *Subscription) Close() error {
	return s.pubsub.Close()
}

// PaymentEvent is the normalized webhook outcome fanned out to
// subscribers waiting on "did the customer pay".
type PaymentEvent struct {
	Type          string `json:"type"`
	Name          string `json:"name,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status,omitempty"`
	ReceivedAt    string `json:"received_at"`
}

// PublishPaymentEvent publishes a payment event
func (p *PubSub) PublishPaymentEvent(ctx context.Context, event *PaymentEvent) error {
	return p.Publish(ctx, ChannelPayments, event)
}

// ParsePaymentEvent parses a payment event from JSON
func ParsePaymentEvent(data []byte) (*PaymentEvent, error) {
	var event PaymentEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to parse payment event: %w", err)
	}
	return &event, nil
}

// SubscribePayments subscribes to payment events with a callback
func (p *PubSub) SubscribePayments(ctx context.Context, callback func(*PaymentEvent)) error {
	sub := p.Subscribe(ctx, ChannelPayments)

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-sub.Channel():
				if msg == nil {
					return
				}
				event, err := ParsePaymentEvent([]byte(msg.Payload))
				if err != nil {
					p.logger.Error("failed to parse payment event", "error", err)
					continue
				}
				callback(event)
			}
		}
	}()

	return nil
}
