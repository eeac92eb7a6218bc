package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

const parisID = "6f1c1f3e-9a0b-4c3d-8e2f-1a2b3c4d5e6f"

var cityColumnNames = []string{
	"id", "city", "country", "region", "short_description", "latitude", "longitude",
	"avg_temp_monthly", "ideal_durations", "budget_level",
	"culture", "adventure", "nature", "beaches", "nightlife", "cuisine", "wellness", "urban", "seclusion",
}

func parisRow(extra ...any) []any {
	row := []any{
		parisID, "Paris", "France", "europe", "City of light.", 48.85, 2.35,
		`{"1":{"avg":5}}`, "", "Luxury",
		5, 2, 2, 1, 5, 5, 3, 5, 1,
	}
	return append(row, extra...)
}

func TestCityRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM travel_cities WHERE id = $1")).
		WithArgs(parisID).
		WillReturnRows(pgxmock.NewRows(cityColumnNames).AddRow(parisRow()...))

	repo := NewCityRepo(mock)
	city, err := repo.GetByID(context.Background(), parisID)
	require.NoError(t, err)

	assert.Equal(t, "Paris", city.City)
	assert.Equal(t, 48.85, city.Latitude)
	assert.Equal(t, 5, city.Culture)
	assert.JSONEq(t, `{"1":{"avg":5}}`, string(city.AvgTempMonthly))
	assert.Nil(t, city.IdealDurations)
	assert.Nil(t, city.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepo_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM travel_cities").
		WithArgs(parisID).
		WillReturnError(pgx.ErrNoRows)

	repo := NewCityRepo(mock)
	_, err = repo.GetByID(context.Background(), parisID)
	assert.ErrorIs(t, err, domain.ErrCityNotFound)

	// malformed ids never reach the database
	_, err = repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrCityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepo_SearchFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE lower(city) LIKE $1 AND lower(budget_level) = $2 ORDER BY city LIMIT 20 OFFSET 40")).
		WithArgs("%par%", "luxury").
		WillReturnRows(pgxmock.NewRows(cityColumnNames).AddRow(parisRow()...))

	repo := NewCityRepo(mock)
	cities, err := repo.Search(context.Background(), domain.CityFilter{
		City: "PAR", BudgetLevel: "Luxury", Limit: 20, Offset: 40,
	})
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, parisID, cities[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepo_RecommendScoresInCategoryOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := append(append([]string{}, cityColumnNames...), "score")
	mock.ExpectQuery(regexp.QuoteMeta(
		"(COALESCE(culture, 0) * $1::float8 + COALESCE(nature, 0) * $2::float8) AS score")).
		WithArgs(3.0, 0.5, "%europe%").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(parisRow(16.0)...))

	repo := NewCityRepo(mock)
	cities, err := repo.Recommend(context.Background(),
		domain.RankWeights{"nature": 0.5, "culture": 3},
		domain.CityFilter{Region: "Europe", Limit: 10})
	require.NoError(t, err)
	require.Len(t, cities, 1)
	require.NotNil(t, cities[0].Score)
	assert.Equal(t, 16.0, *cities[0].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepo_RecommendWithoutWeights(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCityRepo(mock)
	_, err = repo.Recommend(context.Background(), domain.RankWeights{"shopping": 1}, domain.CityFilter{})
	assert.ErrorIs(t, err, domain.ErrNoRankWeights)
}

func TestCityRepo_CountByCountry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("GROUP BY country").
		WithArgs("asia").
		WillReturnRows(pgxmock.NewRows([]string{"country", "count"}).
			AddRow("Japan", 4).
			AddRow("Vietnam", 2))

	repo := NewCityRepo(mock)
	counts, err := repo.CountByCountry(context.Background(), "asia")
	require.NoError(t, err)
	assert.Equal(t, []domain.NameCount{{Name: "Japan", Value: 4}, {Name: "Vietnam", Value: 2}}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepo_DescriptionsUsesGivenScope(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(country) = lower($1)")).
		WithArgs("Italy").
		WillReturnRows(pgxmock.NewRows([]string{"short_description"}).
			AddRow("Ancient ruins.").
			AddRow("Canals."))

	repo := NewCityRepo(mock)
	texts, err := repo.Descriptions(context.Background(), "", "Italy", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ancient ruins.", "Canals."}, texts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
