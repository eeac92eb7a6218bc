package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/travelcities/internal/core/domain"
	"github.com/samirrijal/travelcities/internal/core/ports"
	"github.com/samirrijal/travelcities/internal/pkg/metrics"
)

const (
	defaultCityLimit = 20
	maxCityLimit     = 200
	catalogCacheTTL  = 300 // catalog only changes on ingest
)

var tracer = otel.Tracer("github.com/samirrijal/travelcities/usecases")

// CatalogService handles travel city catalog queries.
type CatalogService struct {
	cities ports.CityRepository
	cache  ports.CacheService
}

// NewCatalogService creates a new CatalogService. cache may be nil.
func NewCatalogService(cities ports.CityRepository, cache ports.CacheService) *CatalogService {
	return &CatalogService{cities: cities, cache: cache}
}

// GetByID returns a single city.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*domain.City, error) {
	if id == "" {
		return nil, fmt.Errorf("city id is required")
	}
	return s.cities.GetByID(ctx, id)
}

// Search filters cities by name, region and budget level.
func (s *CatalogService) Search(ctx context.Context, filter domain.CityFilter) ([]domain.City, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Search")
	defer span.End()

	filter = normalizeFilter(filter)
	cacheKey := fmt.Sprintf("cities:search:%s:%s:%s:%d:%d",
		strings.ToLower(filter.City), strings.ToLower(filter.Region), strings.ToLower(filter.BudgetLevel),
		filter.Limit, filter.Offset)

	var cities []domain.City
	if s.cacheGet(ctx, "search", cacheKey, &cities) {
		return cities, nil
	}

	cities, err := s.cities.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search cities: %w", err)
	}
	span.SetAttributes(attribute.Int("cities.count", len(cities)))

	s.cacheSet(ctx, cacheKey, cities)
	return cities, nil
}

// Recommend ranks cities by the weighted sum of their ratings.
// Unknown categories and non-finite weights are skipped.
func (s *CatalogService) Recommend(ctx context.Context, weights domain.RankWeights, filter domain.CityFilter) ([]domain.City, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.Recommend")
	defer span.End()

	valid := make(domain.RankWeights, len(weights))
	for category, w := range weights {
		if _, ok := (domain.Ratings{}).Get(category); !ok || math.IsNaN(w) || math.IsInf(w, 0) {
			slog.WarnContext(ctx, "skipping invalid rank weight", "category", category, "weight", w)
			continue
		}
		valid[category] = w
	}
	if len(valid) == 0 {
		return nil, domain.ErrNoRankWeights
	}

	filter = normalizeFilter(filter)
	cacheKey := fmt.Sprintf("cities:recommend:%s:%s:%s:%s:%d:%d",
		weightsKey(valid), strings.ToLower(filter.City), strings.ToLower(filter.Region),
		strings.ToLower(filter.BudgetLevel), filter.Limit, filter.Offset)

	var cities []domain.City
	if s.cacheGet(ctx, "recommend", cacheKey, &cities) {
		return cities, nil
	}

	cities, err := s.cities.Recommend(ctx, valid, filter)
	if err != nil {
		return nil, fmt.Errorf("recommend cities: %w", err)
	}
	span.SetAttributes(attribute.Int("cities.count", len(cities)))

	s.cacheSet(ctx, cacheKey, cities)
	return cities, nil
}

// RegionCounts returns the number of cities per region.
func (s *CatalogService) RegionCounts(ctx context.Context) ([]domain.NameCount, error) {
	counts, err := s.cities.CountByRegion(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by region: %w", err)
	}
	return dropUnnamed(counts), nil
}

// CountryCounts returns the number of cities per country inside a region.
func (s *CatalogService) CountryCounts(ctx context.Context, region string) ([]domain.NameCount, error) {
	if strings.TrimSpace(region) == "" {
		return nil, domain.ErrRegionRequired
	}
	counts, err := s.cities.CountByCountry(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("count by country in %q: %w", region, err)
	}
	return dropUnnamed(counts), nil
}

// Description joins the short descriptions of the matching cities.
// city takes priority over country, which takes priority over region.
func (s *CatalogService) Description(ctx context.Context, region, country, city string) (string, error) {
	switch {
	case city != "":
		region, country = "", ""
	case country != "":
		region = ""
	}
	texts, err := s.cities.Descriptions(ctx, region, country, city)
	if err != nil {
		return "", fmt.Errorf("load descriptions: %w", err)
	}
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}

// Countries lists distinct country names, optionally within a region.
func (s *CatalogService) Countries(ctx context.Context, region string) ([]string, error) {
	cacheKey := "cities:countries:" + strings.ToLower(region)
	var countries []string
	if s.cacheGet(ctx, "countries", cacheKey, &countries) {
		return countries, nil
	}

	raw, err := s.cities.Countries(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	countries = make([]string, 0, len(raw))
	for _, c := range raw {
		if strings.TrimSpace(c) != "" {
			countries = append(countries, c)
		}
	}

	s.cacheSet(ctx, cacheKey, countries)
	return countries, nil
}

func (s *CatalogService) cacheGet(ctx context.Context, op, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		metrics.CacheMisses.WithLabelValues(op).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(op).Inc()
	return true
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		_ = s.cache.Set(ctx, key, data, catalogCacheTTL)
	}
}

func normalizeFilter(f domain.CityFilter) domain.CityFilter {
	f.City = strings.TrimSpace(f.City)
	f.Region = strings.TrimSpace(f.Region)
	f.BudgetLevel = strings.TrimSpace(f.BudgetLevel)
	if f.Limit <= 0 {
		f.Limit = defaultCityLimit
	}
	if f.Limit > maxCityLimit {
		f.Limit = maxCityLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// weightsKey renders weights in a stable order for cache keys.
func weightsKey(w domain.RankWeights) string {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%g", k, w[k])
	}
	return b.String()
}

func dropUnnamed(counts []domain.NameCount) []domain.NameCount {
	out := make([]domain.NameCount, 0, len(counts))
	for _, c := range counts {
		if c.Name != "" {
			out = append(out, c)
		}
	}
	return out
}
