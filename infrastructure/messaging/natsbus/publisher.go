// Package natsbus publishes domain events to a NATS subject.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/domain/events"
)

// Conn is the subset of *nats.Conn the publisher uses.
type Conn interface {
	PublishMsg(msg *nats.Msg) error
	Drain() error
}

// Publisher implements ports.EventPublisher on core NATS.
type Publisher struct {
	conn    Conn
	subject string
	logger  *zap.Logger
}

var _ ports.EventPublisher = (*Publisher)(nil)

// Connect dials url and returns a publisher for subject.
func Connect(url, subject string, logger *zap.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("recipebook"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	logger.Info("Connected to NATS", zap.String("url", url), zap.String("subject", subject))
	return NewPublisher(conn, subject, logger), nil
}

// NewPublisher wraps an existing connection
func NewPublisher(conn Conn, subject string, logger *zap.Logger) *Publisher {
	return &Publisher{conn: conn, subject: subject, logger: logger}
}

// Message headers carried alongside the JSON body.
const (
	HeaderEventType   = "Event-Type"
	HeaderAggregateID = "Aggregate-Id"
	HeaderVersion     = "Event-Version"
)

// Publish sends each event as one JSON message with its type, aggregate
// and version in headers.
func (p *Publisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	for _, event := range domainEvents {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled before publish: %w", err)
		}
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal %s event: %w", event.GetEventType(), err)
		}
		msg := nats.NewMsg(p.subject)
		msg.Data = data
		msg.Header.Set(HeaderEventType, event.GetEventType())
		msg.Header.Set(HeaderAggregateID, event.GetAggregateID())
		msg.Header.Set(HeaderVersion, strconv.Itoa(event.GetVersion()))
		if err := p.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("publish to %s: %w", p.subject, err)
		}
	}
	return nil
}

// Close drains the connection
func (p *Publisher) Close() error {
	return p.conn.Drain()
}
