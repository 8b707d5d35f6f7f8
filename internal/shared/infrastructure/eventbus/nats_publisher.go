package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes events as NATS subjects "<prefix>.<routing key>".
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url, prefix string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if prefix == "" {
		prefix = DefaultExchange
	}

	conn, err := nats.Connect(url,
		nats.Name("focusflow"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("NATS publisher connected", "subject_prefix", prefix)
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}, nil
}

// Subject returns the NATS subject used for a routing key.
func (p *NATSPublisher) Subject(routingKey string) string {
	return p.prefix + "." + routingKey
}

// Publish sends the payload on the subject for routingKey.
func (p *NATSPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: p.Subject(routingKey),
		Data:    payload,
		Header:  nats.Header{},
	}
	msg.Header.Set("Content-Type", "application/json")

	if err := p.conn.PublishMsg(msg); err != nil {
		p.logger.Error("failed to publish message", "routing_key", routingKey, "error", err)
		return err
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
