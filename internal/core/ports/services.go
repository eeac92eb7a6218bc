package ports

import (
	"context"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

// EventPublisher publishes journey events to a message broker.
type EventPublisher interface {
	PublishJourneyConfirmed(ctx context.Context, event *domain.JourneyConfirmed) error
	PublishRouteSummary(ctx context.Context, summary *domain.RouteSummary) error
}

// EventSubscriber subscribes to journey events from a message broker.
type EventSubscriber interface {
	SubscribeJourneyConfirmed(ctx context.Context, handler func(ctx context.Context, event *domain.JourneyConfirmed) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
