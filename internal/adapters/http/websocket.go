package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/travelcities/internal/adapters/nats"
	"github.com/samirrijal/travelcities/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to journey events.
type wsMessage struct {
	Action    string `json:"action"`     // "subscribe" | "unsubscribe"
	SessionID string `json:"session_id"` // required
	Channel   string `json:"channel"`    // "summary" | "confirmed" (default: summary)
}

var (
	errBadSessionID   = errors.New("session_id must be a UUID")
	errUnknownSession = errors.New("unknown session")
	errUnknownChannel = errors.New("unknown channel")
)

// subjectFor maps a channel name to the NATS subject for one session.
// Only canonical UUIDs are accepted, so the id can never add subject tokens or wildcards.
func subjectFor(channel, sessionID string) (string, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil || id.String() != sessionID {
		return "", errBadSessionID
	}
	switch channel {
	case "", "summary":
		return natsadapter.SubjectSummary + sessionID, nil
	case "confirmed":
		return natsadapter.SubjectConfirmed + sessionID, nil
	}
	return "", errUnknownChannel
}

// sessionSubject is subjectFor plus a liveness check when exists is set.
func sessionSubject(channel, sessionID string, exists func(string) bool) (string, error) {
	subject, err := subjectFor(channel, sessionID)
	if err != nil {
		return "", err
	}
	if exists != nil && !exists(sessionID) {
		return "", errUnknownSession
	}
	return subject, nil
}

// WebSocketHandler returns a handler that upgrades to WebSocket and relays
// journey events for a session to the client.
// Clients send JSON: {"action":"subscribe","session_id":"...","channel":"summary"}.
// Connecting with ?session_id=... subscribes to that session's summaries right away.
// When sessionExists is set, only live sessions can be subscribed to.
func WebSocketHandler(nc *nats.Conn, sessionExists func(string) bool) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		log := slog.Default().With("remote", remoteAddr)

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "event relay not available"})
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		log.Info("ws client connected")

		subs := make(map[string]*nats.Subscription) // subject -> subscription
		subscribe := func(subject string) error {
			if _, exists := subs[subject]; exists {
				return writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
			}
			s, err := nc.Subscribe(subject, func(msg *nats.Msg) {
				_ = writeJSON(json.RawMessage(msg.Data))
			})
			if err != nil {
				return writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
			}
			subs[subject] = s
			return writeJSON(map[string]string{"status": "subscribed", "subject": subject})
		}

		if sid := c.Query("session_id"); sid != "" {
			if subject, err := sessionSubject("summary", sid, sessionExists); err != nil {
				_ = writeJSON(map[string]string{"error": err.Error()})
			} else {
				_ = subscribe(subject)
			}
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			if m.SessionID == "" {
				_ = writeJSON(map[string]string{"error": "session_id is required"})
				continue
			}
			subject, err := sessionSubject(m.Channel, m.SessionID, sessionExists)
			if errors.Is(err, errUnknownChannel) {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}
			if err != nil {
				_ = writeJSON(map[string]string{"error": err.Error()})
				continue
			}

			switch m.Action {
			case "subscribe":
				_ = subscribe(subject)
			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}
			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Info("ws client disconnected")
	}
}
