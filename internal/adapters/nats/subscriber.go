package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

// ConfirmedConsumer is the durable consumer name for journey confirmations.
const ConfirmedConsumer = "route-summarizer"

type ackAction int

const (
	ackOK ackAction = iota
	ackRetry
	ackDrop
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js); err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeJourneyConfirmed delivers each confirmation to handler, at most
// three times. Messages that do not decode are terminated.
func (s *Subscriber) SubscribeJourneyConfirmed(ctx context.Context, handler func(ctx context.Context, event *domain.JourneyConfirmed) error) error {
	sub, err := s.js.Subscribe(SubjectConfirmed+">", func(msg *nats.Msg) {
		switch dispatch(ctx, msg, handler) {
		case ackOK:
			_ = msg.Ack()
		case ackRetry:
			_ = msg.Nak()
		case ackDrop:
			_ = msg.Term()
		}
	},
		nats.Durable(ConfirmedConsumer),
		nats.ManualAck(),
		nats.AckWait(time.Minute),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectConfirmed, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// dispatch decodes msg into T and runs handler under the trace context
// carried in the message headers.
func dispatch[T any](ctx context.Context, msg *nats.Msg, handler func(context.Context, *T) error) ackAction {
	var v T
	if err := json.Unmarshal(msg.Data, &v); err != nil {
		slog.WarnContext(ctx, "dropping undecodable message", "subject", msg.Subject, "error", err)
		return ackDrop
	}
	if msg.Header != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(msg.Header))
	}
	if err := handler(ctx, &v); err != nil {
		slog.WarnContext(ctx, "message handler failed", "subject", msg.Subject, "error", err)
		return ackRetry
	}
	return ackOK
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
