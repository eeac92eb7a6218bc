package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

const (
	// SubjectConfirmed is the subject prefix for confirmed journeys, suffixed with the session id.
	SubjectConfirmed = "journey.confirmed."
	// SubjectSummary is the subject prefix for computed route summaries.
	SubjectSummary = "journey.summary."
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS, enables JetStream and ensures the JOURNEYS stream.
// The connection is closed again if JetStream cannot be set up.
func NewPublisher(url string, opts ...nats.JSOpt) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream(opts...)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStream(js nats.JetStreamContext) error {
	cfg := nats.StreamConfig{
		Name:      "JOURNEYS",
		Subjects:  []string{"journey.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// PublishJourneyConfirmed publishes on journey.confirmed.<sid>. The message id
// lets JetStream drop a duplicate publish of the same confirmation.
func (p *Publisher) PublishJourneyConfirmed(ctx context.Context, event *domain.JourneyConfirmed) error {
	msgID := fmt.Sprintf("confirmed-%s-%d", event.SessionID, event.ConfirmedAt.UnixNano())
	return p.publish(ctx, SubjectConfirmed+event.SessionID, event, nats.MsgId(msgID))
}

// PublishRouteSummary publishes on journey.summary.<sid>.
func (p *Publisher) PublishRouteSummary(ctx context.Context, summary *domain.RouteSummary) error {
	return p.publish(ctx, SubjectSummary+summary.SessionID, summary)
}

func (p *Publisher) publish(ctx context.Context, subject string, v any, opts ...nats.PubOpt) error {
	msg, err := encodeMsg(ctx, subject, v)
	if err != nil {
		return err
	}
	_, err = p.js.PublishMsg(msg, append(opts, nats.Context(ctx))...)
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// encodeMsg marshals v as JSON and carries the trace context in the headers.
func encodeMsg(ctx context.Context, subject string, v any) (*nats.Msg, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", subject, err)
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))
	return msg, nil
}

// Conn exposes the underlying connection for plain subscriptions.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
