// Package queue publishes session events to RabbitMQ for printers and
// back-office consumers.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coqui-pos/api/internal/enum"
	"github.com/coqui-pos/api/internal/service"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueueReceipts = "pos.receipts"
	QueueKitchen  = "pos.kitchen"
	QueueRefunds  = "pos.refunds"
)

// Message is the body of every published event.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher is a session sink backed by durable RabbitMQ queues.
type Publisher struct {
	conn    *amqp.Connection
	channel channel
	mu      sync.Mutex
	now     func() time.Time
}

// Dial connects to url and declares the queues.
func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := newPublisher(ch)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel) (*Publisher, error) {
	p := &Publisher{channel: ch, now: time.Now}
	for _, name := range []string{QueueReceipts, QueueKitchen, QueueRefunds} {
		if _, err := ch.QueueDeclare(
			name,  // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		); err != nil {
			ch.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", name, err)
		}
	}
	return p, nil
}

func (p *Publisher) Emit(ctx context.Context, r *service.Receipt) error {
	return p.publish(ctx, QueueReceipts, enum.EventReceiptIssued, r.OrderID, r)
}

func (p *Publisher) RefundCompleted(ctx context.Context, ev service.RefundCompleted) error {
	return p.publish(ctx, QueueRefunds, enum.EventRefundCompleted, ev.OrderID, ev)
}

// OrderCleared is not published; consumers only care about settled work.
func (p *Publisher) OrderCleared(ctx context.Context, ev service.OrderCleared) error {
	return nil
}

func (p *Publisher) KitchenTicket(ctx context.Context, t service.KitchenTicket) error {
	return p.publish(ctx, QueueKitchen, enum.EventKitchenTicket, "", t)
}

func (p *Publisher) publish(ctx context.Context, queue, eventType, messageID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	msg, err := json.Marshal(Message{Type: eventType, Payload: body})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		"",    // exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    messageID,
			Type:         eventType,
			Body:         msg,
			Timestamp:    p.now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
