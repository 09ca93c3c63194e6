// Package events publishes domain events. NATS is used when configured;
// otherwise events are dropped.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const SubjectReservationCreated = "roombook.reservation.created"

// ReservationCreated is published after a reservation commits.
type ReservationCreated struct {
	ReservationID string    `json:"reservation_id"`
	Room          int       `json:"room"`
	Date          string    `json:"date"`
	Owner         string    `json:"owner"`
	CreatedAt     time.Time `json:"created_at"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// NATSPublisher publishes JSON payloads on a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
	log  *slog.Logger
}

func NewNATSPublisher(url string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("roombook"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, log: logger}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	n.log.DebugContext(ctx, "publishing event", "subject", subject, "data", string(payload))
	return n.conn.Publish(subject, payload)
}

// Close flushes pending messages and closes the connection.
func (n *NATSPublisher) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}
