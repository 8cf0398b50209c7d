package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"family-finance-go/internal/config"
	"family-finance-go/internal/domain/notifications"
	"family-finance-go/pkg/logger"
	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Message is the JSON body published for every persisted notification.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMessage(item notifications.Notification) Message {
	return Message{
		ID:        item.ID,
		UserID:    item.UserID,
		Type:      string(item.Type),
		Title:     item.Title,
		Message:   item.Message,
		CreatedAt: item.CreatedAt.UTC(),
	}
}

// channel is the subset of *amqp091.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends notifications to a RabbitMQ topic exchange.
type Publisher struct {
	mu         sync.Mutex
	conn       *amqp091.Connection
	channel    channel
	exchange   string
	routingKey string
	log        logger.Logger
}

func Dial(cfg config.AMQPConfig, log logger.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp091.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p := newPublisher(ch, cfg.Exchange, cfg.RoutingKey, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange, routingKey string, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Publisher{
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		log:        log,
	}
}

// Publish routes on "<routing key>.<notification type>".
func (p *Publisher) Publish(ctx context.Context, item notifications.Notification) error {
	body, err := json.Marshal(NewMessage(item))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	key := p.routingKey + "." + string(item.Type)

	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx, p.exchange, key, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    item.ID,
		Timestamp:    item.CreatedAt.UTC(),
		Type:         string(item.Type),
		Body:         body,
	})
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.log.Debug("events.publish: notification published", "notification_id", item.ID, "routing_key", key)
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
