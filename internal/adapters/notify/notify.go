// Package notify hands organization notifications to a transport.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/okian/pirouette/pkg/logger"
)

// ErrNoRecipient is returned for a message without an address.
var ErrNoRecipient = errors.New("notification has no recipient")

// Message is one notification to one recipient.
type Message struct {
	ID      string    `json:"id"`
	EventID int64     `json:"event_id"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

// Sender delivers one message. Delivery is fire-and-forget: a nil error
// means the transport accepted the message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Publisher is the slice of *amqp.Channel the AMQP sender needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSender publishes each message as a persistent JSON document on a
// queue; a mail relay consumes the queue.
type AMQPSender struct {
	pub   Publisher
	queue string
	close func() error
}

var _ Sender = (*AMQPSender)(nil)

// NewAMQPSender publishes to queue through pub.
func NewAMQPSender(pub Publisher, queue string) *AMQPSender {
	return &AMQPSender{pub: pub, queue: queue, close: func() error { return nil }}
}

// DialAMQP connects to url and declares a durable queue.
func DialAMQP(url, queue string) (*AMQPSender, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", queue, err)
	}
	s := NewAMQPSender(ch, queue)
	s.close = func() error {
		return errors.Join(ch.Close(), conn.Close())
	}
	return s, nil
}

// Send publishes m. Messages without an id get a fresh one.
func (s *AMQPSender) Send(ctx context.Context, m Message) error {
	if m.To == "" {
		return ErrNoRecipient
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	err = s.pub.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    m.ID,
		Timestamp:    m.SentAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish notification to %s: %w", m.To, err)
	}
	return nil
}

// Close releases the channel and connection opened by DialAMQP.
func (s *AMQPSender) Close() error { return s.close() }

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log logger.Logger
}

var _ Sender = (*LogSender)(nil)

// NewLogSender logs through l.
func NewLogSender(l logger.Logger) *LogSender {
	return &LogSender{log: l.Named("notify")}
}

// Send logs m.
func (s *LogSender) Send(ctx context.Context, m Message) error {
	if m.To == "" {
		return ErrNoRecipient
	}
	s.log.Info(ctx, "notification",
		logger.Int64("event_id", m.EventID),
		logger.String("to", m.To),
		logger.String("subject", m.Subject),
	)
	return nil
}
