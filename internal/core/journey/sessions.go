package journey

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Sessions owns one Store per browser session and evicts idle ones.
type Sessions struct {
	stores *cache.Cache
	ttl    time.Duration
	log    *slog.Logger
}

// NewSessions creates a registry whose sessions expire after ttl of inactivity.
func NewSessions(ttl, cleanupInterval time.Duration, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sessions{
		stores: cache.New(ttl, cleanupInterval),
		ttl:    ttl,
		log:    logger,
	}
	s.stores.OnEvicted(func(id string, _ interface{}) {
		s.log.Debug("journey session evicted", "session_id", id)
	})
	return s
}

// Create starts a new session with an empty journey and returns its ID.
func (s *Sessions) Create() (string, *Store) {
	for {
		id := uuid.NewString()
		store := NewStore(s.log.With("session_id", id))
		if err := s.stores.Add(id, store, s.ttl); err == nil {
			return id, store
		}
	}
}

// Get returns the session's store and refreshes its expiry.
func (s *Sessions) Get(id string) (*Store, bool) {
	v, ok := s.stores.Get(id)
	if !ok {
		return nil, false
	}
	store := v.(*Store)
	// Replace fails once the key is gone, so a concurrent Delete is never undone.
	if err := s.stores.Replace(id, store, s.ttl); err != nil {
		return nil, false
	}
	return store, true
}

// Delete ends a session. It reports whether the session existed.
func (s *Sessions) Delete(id string) bool {
	if _, ok := s.stores.Get(id); !ok {
		return false
	}
	s.stores.Delete(id)
	return true
}

// Count returns the number of live sessions (expired ones may linger until cleanup).
func (s *Sessions) Count() int {
	return s.stores.ItemCount()
}
