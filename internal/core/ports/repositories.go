package ports

import (
	"context"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

// CityRepository reads the travel city catalog.
type CityRepository interface {
	GetByID(ctx context.Context, id string) (*domain.City, error)
	Search(ctx context.Context, filter domain.CityFilter) ([]domain.City, error)
	// Recommend ranks cities by the weighted sum of their ratings.
	Recommend(ctx context.Context, weights domain.RankWeights, filter domain.CityFilter) ([]domain.City, error)
	CountByRegion(ctx context.Context) ([]domain.NameCount, error)
	CountByCountry(ctx context.Context, region string) ([]domain.NameCount, error)
	Descriptions(ctx context.Context, region, country, city string) ([]string, error)
	Countries(ctx context.Context, region string) ([]string, error)
}

// CityWriter persists catalog cities (used by the ingestor).
type CityWriter interface {
	UpsertBatch(ctx context.Context, cities []domain.City) error
}
