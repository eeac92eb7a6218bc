package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/samirrijal/travelcities/internal/core/domain"
	"github.com/samirrijal/travelcities/internal/core/journey"
	"github.com/samirrijal/travelcities/internal/core/ports"
	"github.com/samirrijal/travelcities/internal/pkg/metrics"
)

// JourneyService exposes per-session journeys to the transport layer.
type JourneyService struct {
	sessions  *journey.Sessions
	cities    ports.CityRepository
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewJourneyService creates a new JourneyService.
// cities and publisher may be nil; catalog adds and event hand-off are then unavailable.
func NewJourneyService(sessions *journey.Sessions, cities ports.CityRepository, publisher ports.EventPublisher) *JourneyService {
	return &JourneyService{sessions: sessions, cities: cities, publisher: publisher, now: time.Now}
}

// StartSession opens a new, empty journey.
func (s *JourneyService) StartSession(ctx context.Context) string {
	id, _ := s.sessions.Create()
	metrics.ActiveSessions.Set(float64(s.sessions.Count()))
	slog.InfoContext(ctx, "journey session started", "session_id", id)
	return id
}

// EndSession discards a journey.
func (s *JourneyService) EndSession(ctx context.Context, sessionID string) error {
	if !s.sessions.Delete(sessionID) {
		return domain.ErrSessionNotFound
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Count()))
	slog.InfoContext(ctx, "journey session ended", "session_id", sessionID)
	return nil
}

// HasSession reports whether sessionID names a live journey.
func (s *JourneyService) HasSession(sessionID string) bool {
	_, err := s.store(sessionID)
	return err == nil
}

// SessionCount returns the number of live sessions.
func (s *JourneyService) SessionCount() int {
	return s.sessions.Count()
}

// AddCity adds a client-supplied city. It reports whether the journey changed.
func (s *JourneyService) AddCity(ctx context.Context, sessionID string, city domain.CityInput) (bool, error) {
	store, err := s.store(sessionID)
	if err != nil {
		return false, err
	}
	added := store.AddCity(city)
	recordMutation("add", added)
	return added, nil
}

// AddCatalogCity resolves a city from the catalog and adds it.
func (s *JourneyService) AddCatalogCity(ctx context.Context, sessionID, cityID string) (bool, error) {
	store, err := s.store(sessionID)
	if err != nil {
		return false, err
	}
	if s.cities == nil {
		return false, fmt.Errorf("city catalog not available")
	}
	city, err := s.cities.GetByID(ctx, cityID)
	if err != nil {
		return false, fmt.Errorf("lookup city %s: %w", cityID, err)
	}
	added := store.AddCity(domain.InputFromCity(city))
	recordMutation("add", added)
	return added, nil
}

// RemoveCity removes a city by ID. Unknown IDs are not an error.
func (s *JourneyService) RemoveCity(ctx context.Context, sessionID, cityID string) (bool, error) {
	store, err := s.store(sessionID)
	if err != nil {
		return false, err
	}
	removed := store.RemoveCity(cityID)
	recordMutation("remove", removed)
	return removed, nil
}

// SetCities replaces the whole journey, e.g. when restoring a saved trip.
func (s *JourneyService) SetCities(ctx context.Context, sessionID string, cities []domain.JourneyCity) error {
	store, err := s.store(sessionID)
	if err != nil {
		return err
	}
	store.SetCities(cities)
	recordMutation("set", true)
	return nil
}

// Clear empties the journey.
func (s *JourneyService) Clear(ctx context.Context, sessionID string) error {
	store, err := s.store(sessionID)
	if err != nil {
		return err
	}
	store.Clear()
	recordMutation("clear", true)
	return nil
}

// Confirm returns the route's city names and hands the journey to the
// event publisher. Publish failures are logged, not returned: the route
// itself is already confirmed for the caller.
func (s *JourneyService) Confirm(ctx context.Context, sessionID string) ([]string, error) {
	store, err := s.store(sessionID)
	if err != nil {
		return nil, err
	}
	route := store.ConfirmRoute()
	metrics.JourneysConfirmed.Inc()
	metrics.ConfirmedRouteLength.Observe(float64(len(route)))

	if s.publisher != nil {
		event := &domain.JourneyConfirmed{
			SessionID:   sessionID,
			Route:       route,
			Cities:      store.Cities(),
			ConfirmedAt: s.now().UTC(),
		}
		if err := s.publisher.PublishJourneyConfirmed(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish journey confirmed failed", "session_id", sessionID, "error", err)
		}
	}
	return route, nil
}

// Cities returns a snapshot of the journey.
func (s *JourneyService) Cities(ctx context.Context, sessionID string) ([]domain.JourneyCity, error) {
	store, err := s.store(sessionID)
	if err != nil {
		return nil, err
	}
	return store.Cities(), nil
}

// CityIDs returns the journey's city IDs in order.
func (s *JourneyService) CityIDs(ctx context.Context, sessionID string) ([]string, error) {
	store, err := s.store(sessionID)
	if err != nil {
		return nil, err
	}
	return store.CityIDs(), nil
}

// Coordinates returns the journey polyline.
func (s *JourneyService) Coordinates(ctx context.Context, sessionID string) ([]domain.Coordinate, error) {
	store, err := s.store(sessionID)
	if err != nil {
		return nil, err
	}
	return store.Coordinates(), nil
}

func (s *JourneyService) store(sessionID string) (*journey.Store, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required: %w", domain.ErrSessionNotFound)
	}
	store, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return store, nil
}

func recordMutation(op string, changed bool) {
	metrics.JourneyMutations.WithLabelValues(op, strconv.FormatBool(changed)).Inc()
}
