package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

// --- Mock CityRepository ---

type mockCityRepo struct {
	getByIDFn        func(ctx context.Context, id string) (*domain.City, error)
	searchFn         func(ctx context.Context, f domain.CityFilter) ([]domain.City, error)
	recommendFn      func(ctx context.Context, w domain.RankWeights, f domain.CityFilter) ([]domain.City, error)
	countByRegionFn  func(ctx context.Context) ([]domain.NameCount, error)
	countByCountryFn func(ctx context.Context, region string) ([]domain.NameCount, error)
	descriptionsFn   func(ctx context.Context, region, country, city string) ([]string, error)
	countriesFn      func(ctx context.Context, region string) ([]string, error)
}

func (m *mockCityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrCityNotFound
}

func (m *mockCityRepo) Search(ctx context.Context, f domain.CityFilter) ([]domain.City, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, f)
	}
	return nil, nil
}

func (m *mockCityRepo) Recommend(ctx context.Context, w domain.RankWeights, f domain.CityFilter) ([]domain.City, error) {
	if m.recommendFn != nil {
		return m.recommendFn(ctx, w, f)
	}
	return nil, nil
}

func (m *mockCityRepo) CountByRegion(ctx context.Context) ([]domain.NameCount, error) {
	if m.countByRegionFn != nil {
		return m.countByRegionFn(ctx)
	}
	return nil, nil
}

func (m *mockCityRepo) CountByCountry(ctx context.Context, region string) ([]domain.NameCount, error) {
	if m.countByCountryFn != nil {
		return m.countByCountryFn(ctx, region)
	}
	return nil, nil
}

func (m *mockCityRepo) Descriptions(ctx context.Context, region, country, city string) ([]string, error) {
	if m.descriptionsFn != nil {
		return m.descriptionsFn(ctx, region, country, city)
	}
	return nil, nil
}

func (m *mockCityRepo) Countries(ctx context.Context, region string) ([]string, error) {
	if m.countriesFn != nil {
		return m.countriesFn(ctx, region)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	confirmed []*domain.JourneyConfirmed
	err       error
}

func (m *mockPublisher) PublishJourneyConfirmed(ctx context.Context, e *domain.JourneyConfirmed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = append(m.confirmed, e)
	return m.err
}

func (m *mockPublisher) PublishRouteSummary(ctx context.Context, s *domain.RouteSummary) error {
	return nil
}

// --- In-memory CacheService ---

var errCacheMiss = errors.New("valkey nil message")

type memCache struct {
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	c.data[key] = value
	c.sets++
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}
