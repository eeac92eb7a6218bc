package main

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/samirrijal/travelcities/internal/core/domain"
	"github.com/samirrijal/travelcities/internal/pkg/geospatial"
)

// parseCity maps one CSV record onto a catalog city.
// Rows without a usable name or position are rejected; everything else is best effort.
func parseCity(record []string, cols map[string]int) (domain.City, error) {
	c := domain.City{
		City:             getField(record, cols, "city"),
		Country:          getField(record, cols, "country"),
		Region:           getField(record, cols, "region"),
		ShortDescription: getField(record, cols, "short_description"),
		BudgetLevel:      getField(record, cols, "budget_level"),
	}
	if c.City == "" {
		return c, fmt.Errorf("empty city name")
	}

	id, err := uuid.Parse(getField(record, cols, "id"))
	if err != nil {
		id = uuid.New()
	}
	c.ID = id.String()

	lat, errLat := strconv.ParseFloat(getField(record, cols, "latitude"), 64)
	lon, errLon := strconv.ParseFloat(getField(record, cols, "longitude"), 64)
	if errLat != nil || errLon != nil || !geospatial.ValidCoordinate(lat, lon) {
		return c, fmt.Errorf("%s: bad coordinates", c.City)
	}
	c.Latitude, c.Longitude = lat, lon

	c.AvgTempMonthly = parseJSONField(record, cols, "avg_temp_monthly")
	c.IdealDurations = parseJSONField(record, cols, "ideal_durations")

	c.Culture = getRating(record, cols, "culture")
	c.Adventure = getRating(record, cols, "adventure")
	c.Nature = getRating(record, cols, "nature")
	c.Beaches = getRating(record, cols, "beaches")
	c.Nightlife = getRating(record, cols, "nightlife")
	c.Cuisine = getRating(record, cols, "cuisine")
	c.Wellness = getRating(record, cols, "wellness")
	c.Urban = getRating(record, cols, "urban")
	c.Seclusion = getRating(record, cols, "seclusion")
	return c, nil
}

// parseJSONField returns nil for blank or malformed values.
func parseJSONField(record []string, cols map[string]int, name string) json.RawMessage {
	s := getField(record, cols, name)
	if s == "" {
		return nil
	}
	if !json.Valid([]byte(s)) {
		log.Printf("warning: could not parse %s %q", name, s)
		return nil
	}
	return json.RawMessage(s)
}

// getRating accepts "4" and "4.0".
func getRating(record []string, cols map[string]int, name string) int {
	s := getField(record, cols, name)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
