package domain

import (
	"encoding/json"
	"time"
)

// DefaultBudgetLevel is used when a city arrives without a budget category.
const DefaultBudgetLevel = "N/A"

// RatingCategories lists the travel-style ratings carried by every city,
// in the column order used by storage and the API.
var RatingCategories = []string{
	"culture", "adventure", "nature", "beaches", "nightlife",
	"cuisine", "wellness", "urban", "seclusion",
}

// Ratings holds the nine travel-style scores of a city.
type Ratings struct {
	Culture   int `json:"culture"`
	Adventure int `json:"adventure"`
	Nature    int `json:"nature"`
	Beaches   int `json:"beaches"`
	Nightlife int `json:"nightlife"`
	Cuisine   int `json:"cuisine"`
	Wellness  int `json:"wellness"`
	Urban     int `json:"urban"`
	Seclusion int `json:"seclusion"`
}

// Get returns the rating for a category name and whether the name is known.
func (r Ratings) Get(category string) (int, bool) {
	switch category {
	case "culture":
		return r.Culture, true
	case "adventure":
		return r.Adventure, true
	case "nature":
		return r.Nature, true
	case "beaches":
		return r.Beaches, true
	case "nightlife":
		return r.Nightlife, true
	case "cuisine":
		return r.Cuisine, true
	case "wellness":
		return r.Wellness, true
	case "urban":
		return r.Urban, true
	case "seclusion":
		return r.Seclusion, true
	}
	return 0, false
}

// City is a catalog entry from the travel_cities table.
type City struct {
	ID               string          `json:"id"`
	City             string          `json:"city"`
	Country          string          `json:"country"`
	Region           string          `json:"region,omitempty"`
	ShortDescription string          `json:"short_description,omitempty"`
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	AvgTempMonthly   json.RawMessage `json:"avg_temp_monthly,omitempty"`
	IdealDurations   json.RawMessage `json:"ideal_durations,omitempty"`
	BudgetLevel      string          `json:"budget_level"`
	Ratings
	Score *float64 `json:"score,omitempty"` // set by recommendations
}

// JourneyCity is a normalized city held in a journey.
type JourneyCity struct {
	ID          string  `json:"id"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	BudgetLevel string  `json:"budget_level"`
	Ratings
}

// RatingsInput mirrors Ratings with every score optional.
type RatingsInput struct {
	Culture   *int `json:"culture,omitempty"`
	Adventure *int `json:"adventure,omitempty"`
	Nature    *int `json:"nature,omitempty"`
	Beaches   *int `json:"beaches,omitempty"`
	Nightlife *int `json:"nightlife,omitempty"`
	Cuisine   *int `json:"cuisine,omitempty"`
	Wellness  *int `json:"wellness,omitempty"`
	Urban     *int `json:"urban,omitempty"`
	Seclusion *int `json:"seclusion,omitempty"`
}

// CityInput is a city as submitted by a client, before normalization.
type CityInput struct {
	ID          string  `json:"id"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	BudgetLevel *string `json:"budget_level,omitempty"`
	RatingsInput
}

// Normalize fills missing optional fields with their defaults.
// Only absent values are replaced; an explicit zero rating is kept.
func (in CityInput) Normalize() JourneyCity {
	budget := DefaultBudgetLevel
	if in.BudgetLevel != nil && *in.BudgetLevel != "" {
		budget = *in.BudgetLevel
	}
	return JourneyCity{
		ID:          in.ID,
		City:        in.City,
		Country:     in.Country,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		BudgetLevel: budget,
		Ratings: Ratings{
			Culture:   valueOrZero(in.Culture),
			Adventure: valueOrZero(in.Adventure),
			Nature:    valueOrZero(in.Nature),
			Beaches:   valueOrZero(in.Beaches),
			Nightlife: valueOrZero(in.Nightlife),
			Cuisine:   valueOrZero(in.Cuisine),
			Wellness:  valueOrZero(in.Wellness),
			Urban:     valueOrZero(in.Urban),
			Seclusion: valueOrZero(in.Seclusion),
		},
	}
}

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// InputFromCity converts a catalog city into a journey input.
func InputFromCity(c *City) CityInput {
	r := c.Ratings
	budget := c.BudgetLevel
	return CityInput{
		ID:          c.ID,
		City:        c.City,
		Country:     c.Country,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		BudgetLevel: &budget,
		RatingsInput: RatingsInput{
			Culture:   &r.Culture,
			Adventure: &r.Adventure,
			Nature:    &r.Nature,
			Beaches:   &r.Beaches,
			Nightlife: &r.Nightlife,
			Cuisine:   &r.Cuisine,
			Wellness:  &r.Wellness,
			Urban:     &r.Urban,
			Seclusion: &r.Seclusion,
		},
	}
}

// CityFilter narrows catalog searches. Empty fields are ignored.
type CityFilter struct {
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	BudgetLevel string `json:"budget_level,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// RankWeights maps a rating category to its importance.
type RankWeights map[string]float64

// NameCount is a labelled count, shaped for chart widgets.
type NameCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// JourneyConfirmed is emitted when a session confirms its route.
type JourneyConfirmed struct {
	SessionID   string        `json:"session_id"`
	Route       []string      `json:"route"`
	Cities      []JourneyCity `json:"cities"`
	ConfirmedAt time.Time     `json:"confirmed_at"`
}

// RouteLeg is the hop between two consecutive journey cities.
type RouteLeg struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	DistanceKm float64 `json:"distance_km"`
}

// RouteSummary describes a confirmed journey as travelled legs.
type RouteSummary struct {
	SessionID string     `json:"session_id"`
	Stops     []string   `json:"stops"`
	Legs      []RouteLeg `json:"legs"`
	TotalKm   float64    `json:"total_km"`
}
