package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// cityColumns must stay in sync with scanCity.
var cityColumns = []string{
	"id::text",
	"COALESCE(city, '')",
	"COALESCE(country, '')",
	"COALESCE(region, '')",
	"COALESCE(short_description, '')",
	"COALESCE(latitude, 0)",
	"COALESCE(longitude, 0)",
	"COALESCE(avg_temp_monthly::text, '')",
	"COALESCE(ideal_durations::text, '')",
	"COALESCE(budget_level, '')",
	"COALESCE(culture, 0)",
	"COALESCE(adventure, 0)",
	"COALESCE(nature, 0)",
	"COALESCE(beaches, 0)",
	"COALESCE(nightlife, 0)",
	"COALESCE(cuisine, 0)",
	"COALESCE(wellness, 0)",
	"COALESCE(urban, 0)",
	"COALESCE(seclusion, 0)",
}

// CityRepo implements ports.CityRepository and ports.CityWriter.
type CityRepo struct {
	q Querier
}

func NewCityRepo(q Querier) *CityRepo {
	return &CityRepo{q: q}
}

func (r *CityRepo) GetByID(ctx context.Context, id string) (*domain.City, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrCityNotFound
	}

	query, args, err := psql.Select(cityColumns...).From("travel_cities").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	c, err := scanCity(r.q.QueryRow(ctx, query, args...), nil)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CityRepo) Search(ctx context.Context, f domain.CityFilter) ([]domain.City, error) {
	q := applyCityFilter(psql.Select(cityColumns...).From("travel_cities"), f).
		OrderBy("city").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))

	return r.queryCities(ctx, q, false)
}

func (r *CityRepo) Recommend(ctx context.Context, weights domain.RankWeights, f domain.CityFilter) ([]domain.City, error) {
	var terms []string
	var args []any
	for _, category := range domain.RatingCategories {
		w, ok := weights[category]
		if !ok {
			continue
		}
		terms = append(terms, fmt.Sprintf("COALESCE(%s, 0) * ?::float8", category))
		args = append(args, w)
	}
	if len(terms) == 0 {
		return nil, domain.ErrNoRankWeights
	}
	score := sq.Expr(strings.Join(terms, " + "), args...)

	q := applyCityFilter(
		psql.Select(cityColumns...).Column(sq.Alias(score, "score")).From("travel_cities"), f).
		OrderBy("score DESC", "city").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))

	return r.queryCities(ctx, q, true)
}

func (r *CityRepo) CountByRegion(ctx context.Context) ([]domain.NameCount, error) {
	rows, err := r.q.Query(ctx, `
		SELECT COALESCE(region, ''), count(*)
		FROM travel_cities
		GROUP BY region
		ORDER BY region
	`)
	if err != nil {
		return nil, err
	}
	return scanNameCounts(rows)
}

func (r *CityRepo) CountByCountry(ctx context.Context, region string) ([]domain.NameCount, error) {
	rows, err := r.q.Query(ctx, `
		SELECT COALESCE(country, ''), count(*)
		FROM travel_cities
		WHERE lower(region) = lower($1)
		GROUP BY country
		ORDER BY country
	`, region)
	if err != nil {
		return nil, err
	}
	return scanNameCounts(rows)
}

func (r *CityRepo) Descriptions(ctx context.Context, region, country, city string) ([]string, error) {
	q := psql.Select("COALESCE(short_description, '')").From("travel_cities")
	if city != "" {
		q = q.Where("lower(city) = lower(?)", city)
	}
	if country != "" {
		q = q.Where("lower(country) = lower(?)", country)
	}
	if region != "" {
		q = q.Where("lower(region) = lower(?)", region)
	}
	return r.queryStrings(ctx, q)
}

func (r *CityRepo) Countries(ctx context.Context, region string) ([]string, error) {
	q := psql.Select("country").Distinct().From("travel_cities").
		Where("country IS NOT NULL").
		OrderBy("country")
	if region != "" {
		q = q.Where("lower(region) = lower(?)", region)
	}
	return r.queryStrings(ctx, q)
}

// UpsertBatch inserts or refreshes catalog cities in one round trip.
func (r *CityRepo) UpsertBatch(ctx context.Context, cities []domain.City) error {
	if len(cities) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range cities {
		batch.Queue(`
			INSERT INTO travel_cities (
				id, city, country, region, short_description, latitude, longitude, geometry,
				avg_temp_monthly, ideal_durations, budget_level,
				culture, adventure, nature, beaches, nightlife, cuisine, wellness, urban, seclusion)
			VALUES ($1, $2, $3, $4, $5, $6, $7, ST_SetSRID(ST_MakePoint($7, $6), 4326),
				$8::jsonb, $9::jsonb, $10,
				$11, $12, $13, $14, $15, $16, $17, $18, $19)
			ON CONFLICT (id) DO UPDATE SET
				city = EXCLUDED.city, country = EXCLUDED.country, region = EXCLUDED.region,
				short_description = EXCLUDED.short_description,
				latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, geometry = EXCLUDED.geometry,
				avg_temp_monthly = EXCLUDED.avg_temp_monthly, ideal_durations = EXCLUDED.ideal_durations,
				budget_level = EXCLUDED.budget_level,
				culture = EXCLUDED.culture, adventure = EXCLUDED.adventure, nature = EXCLUDED.nature,
				beaches = EXCLUDED.beaches, nightlife = EXCLUDED.nightlife, cuisine = EXCLUDED.cuisine,
				wellness = EXCLUDED.wellness, urban = EXCLUDED.urban, seclusion = EXCLUDED.seclusion
		`, c.ID, c.City, c.Country, nilEmpty(c.Region), nilEmpty(c.ShortDescription),
			c.Latitude, c.Longitude,
			nilJSON(c.AvgTempMonthly), nilJSON(c.IdealDurations), nilEmpty(c.BudgetLevel),
			c.Culture, c.Adventure, c.Nature, c.Beaches, c.Nightlife,
			c.Cuisine, c.Wellness, c.Urban, c.Seclusion)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for i := range cities {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch item %d (%s): %w", i, cities[i].City, err)
		}
	}
	return nil
}

func (r *CityRepo) queryCities(ctx context.Context, q sq.SelectBuilder, withScore bool) ([]domain.City, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := []domain.City{}
	for rows.Next() {
		var score *float64
		if withScore {
			score = new(float64)
		}
		c, err := scanCity(rows, score)
		if err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (r *CityRepo) queryStrings(ctx context.Context, q sq.SelectBuilder) ([]string, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func applyCityFilter(q sq.SelectBuilder, f domain.CityFilter) sq.SelectBuilder {
	if f.City != "" {
		q = q.Where("lower(city) LIKE ?", "%"+strings.ToLower(f.City)+"%")
	}
	if f.Region != "" {
		q = q.Where("lower(region) LIKE ?", "%"+strings.ToLower(f.Region)+"%")
	}
	if f.BudgetLevel != "" {
		q = q.Where("lower(budget_level) = ?", strings.ToLower(f.BudgetLevel))
	}
	return q
}

// scanCity reads one row selected with cityColumns, plus an optional score column.
func scanCity(row pgx.Row, score *float64) (domain.City, error) {
	var c domain.City
	var avgTemp, durations string
	dest := []any{
		&c.ID, &c.City, &c.Country, &c.Region, &c.ShortDescription,
		&c.Latitude, &c.Longitude, &avgTemp, &durations, &c.BudgetLevel,
		&c.Culture, &c.Adventure, &c.Nature, &c.Beaches, &c.Nightlife,
		&c.Cuisine, &c.Wellness, &c.Urban, &c.Seclusion,
	}
	if score != nil {
		dest = append(dest, score)
	}
	if err := row.Scan(dest...); err != nil {
		return c, err
	}
	if avgTemp != "" {
		c.AvgTempMonthly = json.RawMessage(avgTemp)
	}
	if durations != "" {
		c.IdealDurations = json.RawMessage(durations)
	}
	c.Score = score
	return c, nil
}

func scanNameCounts(rows pgx.Rows) ([]domain.NameCount, error) {
	defer rows.Close()

	var out []domain.NameCount
	for rows.Next() {
		var nc domain.NameCount
		if err := rows.Scan(&nc.Name, &nc.Value); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}

func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nilJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
