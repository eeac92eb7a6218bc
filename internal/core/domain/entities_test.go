package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func TestCityInput_NormalizeDefaults(t *testing.T) {
	in := domain.CityInput{ID: "1", City: "Paris", Country: "FR", Latitude: 48.85, Longitude: 2.35}

	got := in.Normalize()

	assert.Equal(t, domain.DefaultBudgetLevel, got.BudgetLevel)
	assert.Equal(t, domain.Ratings{}, got.Ratings)
	assert.Equal(t, "Paris", got.City)
	assert.Equal(t, 48.85, got.Latitude)
}

func TestCityInput_NormalizeKeepsProvidedValues(t *testing.T) {
	in := domain.CityInput{
		ID:          "2",
		City:        "Rome",
		BudgetLevel: strPtr("Mid-range"),
		RatingsInput: domain.RatingsInput{
			Culture:   intPtr(5),
			Nightlife: intPtr(0),
			Seclusion: intPtr(2),
		},
	}

	got := in.Normalize()

	assert.Equal(t, "Mid-range", got.BudgetLevel)
	assert.Equal(t, 5, got.Culture)
	assert.Equal(t, 0, got.Nightlife)
	assert.Equal(t, 2, got.Seclusion)
	assert.Equal(t, 0, got.Beaches)
}

func TestCityInput_NormalizeEmptyBudget(t *testing.T) {
	got := domain.CityInput{ID: "3", BudgetLevel: strPtr("")}.Normalize()
	assert.Equal(t, domain.DefaultBudgetLevel, got.BudgetLevel)
}

func TestInputFromCity_RoundTrip(t *testing.T) {
	c := &domain.City{
		ID: "7", City: "Kyoto", Country: "JP", Region: "asia",
		Latitude: 35.01, Longitude: 135.77, BudgetLevel: "Luxury",
		Ratings: domain.Ratings{Culture: 5, Wellness: 4},
	}

	got := domain.InputFromCity(c).Normalize()

	assert.Equal(t, "Luxury", got.BudgetLevel)
	assert.Equal(t, c.Ratings, got.Ratings)
	assert.Equal(t, c.Latitude, got.Latitude)
}

func TestRatings_Get(t *testing.T) {
	r := domain.Ratings{Culture: 1, Adventure: 2, Nature: 3, Beaches: 4, Nightlife: 5,
		Cuisine: 6, Wellness: 7, Urban: 8, Seclusion: 9}

	for i, cat := range domain.RatingCategories {
		v, ok := r.Get(cat)
		assert.True(t, ok, cat)
		assert.Equal(t, i+1, v, cat)
	}

	_, ok := r.Get("shopping")
	assert.False(t, ok)
}
