// Package journey keeps the ordered list of cities a traveller has picked
// for a trip, plus the per-session registry that owns those lists.
package journey

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

// Store is an ordered journey of cities with no two sharing an ID.
// All reads hand out copies; callers never see the backing slice.
type Store struct {
	mu     sync.RWMutex
	cities []domain.JourneyCity
	log    *slog.Logger
}

// NewStore returns an empty journey. A nil logger falls back to slog.Default().
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{log: logger}
}

// AddCity appends the normalized city unless its ID is already present.
// It reports whether the journey changed.
func (s *Store) AddCity(in domain.CityInput) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(in.ID) >= 0 {
		s.log.Debug("city already in journey", "city_id", in.ID, "city", in.City)
		return false
	}
	s.cities = append(s.cities, in.Normalize())
	s.log.Debug("added city to journey", "city_id", in.ID, "city", in.City, "size", len(s.cities))
	return true
}

// RemoveCity drops the city with the given ID. Unknown IDs are ignored.
func (s *Store) RemoveCity(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.log.Debug("city not found in journey", "city_id", id)
		return false
	}
	s.cities = slices.Delete(s.cities, i, i+1)
	s.log.Debug("removed city from journey", "city_id", id, "size", len(s.cities))
	return true
}

// SetCities replaces the journey wholesale, typically to restore a saved one.
// The input is copied as-is: no dedup, no defaults.
func (s *Store) SetCities(cities []domain.JourneyCity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cities = slices.Clone(cities)
	s.log.Debug("journey cities replaced", "size", len(s.cities))
}

// Clear empties the journey.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cities = nil
	s.log.Debug("journey cleared")
}

// ConfirmRoute returns the city names in journey order.
func (s *Store) ConfirmRoute() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.cities))
	for _, c := range s.cities {
		names = append(names, c.City)
	}
	s.log.Info("journey route confirmed", "route", names)
	return names
}

// Cities returns a snapshot of the journey.
func (s *Store) Cities() []domain.JourneyCity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.JourneyCity, len(s.cities))
	copy(out, s.cities)
	return out
}

// CityIDs returns the city IDs in journey order.
func (s *Store) CityIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.cities))
	for _, c := range s.cities {
		ids = append(ids, c.ID)
	}
	return ids
}

// Coordinates returns one [lat, lon] pair per city, in journey order.
func (s *Store) Coordinates() []domain.Coordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coords := make([]domain.Coordinate, 0, len(s.cities))
	for _, c := range s.cities {
		coords = append(coords, domain.Coordinate{c.Latitude, c.Longitude})
	}
	return coords
}

// Len returns the number of cities in the journey.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cities)
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.cities, func(c domain.JourneyCity) bool { return c.ID == id })
}
