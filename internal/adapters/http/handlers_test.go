package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/travelcities/internal/adapters/http"
	"github.com/samirrijal/travelcities/internal/core/domain"
	"github.com/samirrijal/travelcities/internal/core/journey"
	"github.com/samirrijal/travelcities/internal/core/usecases"
)

// ---- Mock repository ----

type mockCityRepo struct {
	getByIDFn        func(ctx context.Context, id string) (*domain.City, error)
	searchFn         func(ctx context.Context, f domain.CityFilter) ([]domain.City, error)
	recommendFn      func(ctx context.Context, w domain.RankWeights, f domain.CityFilter) ([]domain.City, error)
	countByCountryFn func(ctx context.Context, region string) ([]domain.NameCount, error)
	descriptionsFn   func(ctx context.Context, region, country, city string) ([]string, error)
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
	return []domain.City{}, nil
}
func (m *mockCityRepo) Recommend(ctx context.Context, w domain.RankWeights, f domain.CityFilter) ([]domain.City, error) {
	if m.recommendFn != nil {
		return m.recommendFn(ctx, w, f)
	}
	return []domain.City{}, nil
}
func (m *mockCityRepo) CountByRegion(ctx context.Context) ([]domain.NameCount, error) {
	return []domain.NameCount{{Name: "europe", Value: 2}}, nil
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
	return []string{"France", "Italy"}, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(repo *mockCityRepo) *handler.Dependencies {
	if repo == nil {
		repo = &mockCityRepo{}
	}
	sessions := journey.NewSessions(time.Minute, time.Minute, nil)
	return &handler.Dependencies{
		Journeys: usecases.NewJourneyService(sessions, repo, nil),
		Catalog:  usecases.NewCatalogService(repo, nil),
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

func newSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := doJSON(t, app, "POST", "/v1/sessions", "")
	if status != 201 {
		t.Fatalf("expected 201, got %d", status)
	}
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.SessionID == "" {
		t.Fatalf("bad session response %s: %v", body, err)
	}
	return out.SessionID
}

type journeyBody struct {
	SessionID string               `json:"session_id"`
	Cities    []domain.JourneyCity `json:"cities"`
}

// ---- Journey handler tests ----

func TestAddCity_AppendsAndDeduplicates(t *testing.T) {
	app := setupApp(makeDeps(nil))
	sid := newSession(t, app)
	base := "/v1/sessions/" + sid + "/journey"

	status, body := doJSON(t, app, "POST", base+"/cities",
		`{"id":"1","city":"Paris","country":"France","latitude":48.85,"longitude":2.35,"culture":5}`)
	if status != 201 {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}

	var j journeyBody
	json.Unmarshal(body, &j)
	if len(j.Cities) != 1 {
		t.Fatalf("expected 1 city, got %d", len(j.Cities))
	}
	c := j.Cities[0]
	if c.BudgetLevel != "N/A" || c.Culture != 5 || c.Nature != 0 {
		t.Errorf("defaults not applied: %+v", c)
	}

	status, _ = doJSON(t, app, "POST", base+"/cities", `{"id":"1","city":"Paris again"}`)
	if status != 200 {
		t.Fatalf("expected 200 for duplicate, got %d", status)
	}

	_, body = doJSON(t, app, "GET", base, "")
	json.Unmarshal(body, &j)
	if len(j.Cities) != 1 || j.Cities[0].City != "Paris" {
		t.Errorf("duplicate should not replace existing entry: %+v", j.Cities)
	}
}

func TestAddCity_Validation(t *testing.T) {
	app := setupApp(makeDeps(nil))
	sid := newSession(t, app)
	url := "/v1/sessions/" + sid + "/journey/cities"

	cases := map[string]string{
		"missing id":   `{"city":"Nowhere"}`,
		"bad latitude": `{"id":"x","latitude":123,"longitude":0}`,
		"invalid json": `{"id":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			status, resp := doJSON(t, app, "POST", url, body)
			if status != 400 {
				t.Fatalf("expected 400, got %d", status)
			}
			var apiErr handler.APIError
			json.Unmarshal(resp, &apiErr)
			if apiErr.Code != "bad_request" {
				t.Errorf("expected bad_request error, got %s", apiErr.Code)
			}
		})
	}
}

func TestAddCity_FromCatalog(t *testing.T) {
	repo := &mockCityRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.City, error) {
			if id != "c-42" {
				return nil, domain.ErrCityNotFound
			}
			return &domain.City{ID: "c-42", City: "Kyoto", Country: "Japan", BudgetLevel: "Mid-range",
				Latitude: 35.01, Longitude: 135.77}, nil
		},
	}
	app := setupApp(makeDeps(repo))
	sid := newSession(t, app)
	url := "/v1/sessions/" + sid + "/journey/cities"

	status, body := doJSON(t, app, "POST", url, `{"catalog_id":"c-42"}`)
	if status != 201 {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	var j journeyBody
	json.Unmarshal(body, &j)
	if j.Cities[0].BudgetLevel != "Mid-range" {
		t.Errorf("expected catalog budget level, got %q", j.Cities[0].BudgetLevel)
	}

	status, _ = doJSON(t, app, "POST", url, `{"catalog_id":"missing"}`)
	if status != 404 {
		t.Fatalf("expected 404 for unknown catalog city, got %d", status)
	}
}

func TestJourney_UnknownSession(t *testing.T) {
	app := setupApp(makeDeps(nil))

	status, body := doJSON(t, app, "GET", "/v1/sessions/nope/journey", "")
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
	var apiErr handler.APIError
	json.Unmarshal(body, &apiErr)
	if apiErr.Code != "not_found" || apiErr.Message != "session not found" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestJourney_ReadsRemoveAndClear(t *testing.T) {
	app := setupApp(makeDeps(nil))
	sid := newSession(t, app)
	base := "/v1/sessions/" + sid + "/journey"

	doJSON(t, app, "POST", base+"/cities", `{"id":"p","city":"Paris","latitude":48.85,"longitude":2.35}`)
	doJSON(t, app, "POST", base+"/cities", `{"id":"r","city":"Rome","latitude":41.9,"longitude":12.5}`)

	_, body := doJSON(t, app, "GET", base+"/ids", "")
	var ids []string
	json.Unmarshal(body, &ids)
	if len(ids) != 2 || ids[0] != "p" || ids[1] != "r" {
		t.Fatalf("unexpected ids %v", ids)
	}

	_, body = doJSON(t, app, "GET", base+"/coordinates", "")
	var coords [][2]float64
	json.Unmarshal(body, &coords)
	if len(coords) != 2 || coords[1] != [2]float64{41.9, 12.5} {
		t.Fatalf("unexpected coordinates %v", coords)
	}

	status, _ := doJSON(t, app, "DELETE", base+"/cities/unknown", "")
	if status != 200 {
		t.Fatalf("removing an unknown id should be a no-op, got %d", status)
	}
	status, body = doJSON(t, app, "DELETE", base+"/cities/p", "")
	var j journeyBody
	json.Unmarshal(body, &j)
	if status != 200 || len(j.Cities) != 1 || j.Cities[0].ID != "r" {
		t.Fatalf("unexpected remove result %d %+v", status, j.Cities)
	}

	status, _ = doJSON(t, app, "DELETE", base, "")
	if status != 204 {
		t.Fatalf("expected 204, got %d", status)
	}
	_, body = doJSON(t, app, "GET", base+"/ids", "")
	if strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("expected empty id list, got %s", body)
	}
}

func TestSetJourney_StoresVerbatim(t *testing.T) {
	app := setupApp(makeDeps(nil))
	sid := newSession(t, app)
	base := "/v1/sessions/" + sid + "/journey"

	status, body := doJSON(t, app, "PUT", base,
		`{"cities":[{"id":"a","city":"Oslo","budget_level":""},{"id":"a","city":"Oslo"}]}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var j journeyBody
	json.Unmarshal(body, &j)
	if len(j.Cities) != 2 || j.Cities[0].BudgetLevel != "" {
		t.Fatalf("saved list should be stored as given: %+v", j.Cities)
	}

	status, _ = doJSON(t, app, "PUT", base, `{}`)
	if status != 400 {
		t.Fatalf("expected 400 without cities, got %d", status)
	}
}

func TestConfirmJourney(t *testing.T) {
	app := setupApp(makeDeps(nil))
	sid := newSession(t, app)
	base := "/v1/sessions/" + sid + "/journey"

	doJSON(t, app, "POST", base+"/cities", `{"id":"p","city":"Paris"}`)
	doJSON(t, app, "POST", base+"/cities", `{"id":"r","city":"Rome"}`)

	status, body := doJSON(t, app, "POST", base+"/confirm", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var out struct {
		Route []string `json:"route"`
	}
	json.Unmarshal(body, &out)
	if len(out.Route) != 2 || out.Route[0] != "Paris" || out.Route[1] != "Rome" {
		t.Fatalf("unexpected route %v", out.Route)
	}
}

func TestDeleteSession(t *testing.T) {
	app := setupApp(makeDeps(nil))
	sid := newSession(t, app)

	status, _ := doJSON(t, app, "DELETE", "/v1/sessions/"+sid, "")
	if status != 204 {
		t.Fatalf("expected 204, got %d", status)
	}
	status, _ = doJSON(t, app, "DELETE", "/v1/sessions/"+sid, "")
	if status != 404 {
		t.Fatalf("expected 404 for a second delete, got %d", status)
	}
}

func TestJourney_NoStoreHeader(t *testing.T) {
	app := setupApp(makeDeps(nil))
	sid := newSession(t, app)

	req := httptest.NewRequest("GET", "/v1/sessions/"+sid+"/journey", nil)
	resp, _ := app.Test(req, -1)
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store, got %q", cc)
	}
	if resp.Header.Get("ETag") != "" {
		t.Error("no-store responses should not carry an ETag")
	}
}

// ---- Catalog handler tests ----

func TestSearchCities_PassesFilters(t *testing.T) {
	var got domain.CityFilter
	repo := &mockCityRepo{
		searchFn: func(ctx context.Context, f domain.CityFilter) ([]domain.City, error) {
			got = f
			return []domain.City{{ID: "1", City: "Paris"}}, nil
		},
	}
	app := setupApp(makeDeps(repo))

	status, body := doJSON(t, app, "GET", "/v1/cities/search?city=par&budget_level=Luxury&limit=5&offset=10", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if got.City != "par" || got.BudgetLevel != "Luxury" || got.Limit != 5 || got.Offset != 10 {
		t.Errorf("unexpected filter %+v", got)
	}
	var cities []domain.City
	json.Unmarshal(body, &cities)
	if len(cities) != 1 {
		t.Errorf("expected 1 city, got %d", len(cities))
	}
}

func TestRecommend(t *testing.T) {
	var gotWeights domain.RankWeights
	var gotFilter domain.CityFilter
	repo := &mockCityRepo{
		recommendFn: func(ctx context.Context, w domain.RankWeights, f domain.CityFilter) ([]domain.City, error) {
			gotWeights, gotFilter = w, f
			return []domain.City{}, nil
		},
	}
	app := setupApp(makeDeps(repo))

	status, body := doJSON(t, app, "POST", "/v1/cities/recommend",
		`{"rank_weights":{"culture":5,"nature":"lots","shopping":2},"filters":{"region":"europe"},"limit":10}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if len(gotWeights) != 1 || gotWeights["culture"] != 5 {
		t.Errorf("expected only the culture weight, got %v", gotWeights)
	}
	if gotFilter.Region != "europe" || gotFilter.Limit != 10 {
		t.Errorf("unexpected filter %+v", gotFilter)
	}
}

func TestRecommend_BadWeights(t *testing.T) {
	app := setupApp(makeDeps(nil))

	status, _ := doJSON(t, app, "POST", "/v1/cities/recommend", `{"filters":{}}`)
	if status != 400 {
		t.Fatalf("expected 400 without rank_weights, got %d", status)
	}
	status, _ = doJSON(t, app, "POST", "/v1/cities/recommend", `{"rank_weights":{"shopping":1}}`)
	if status != 400 {
		t.Fatalf("expected 400 without valid weights, got %d", status)
	}
}

func TestGetCity_NotFound(t *testing.T) {
	app := setupApp(makeDeps(nil))

	status, _ := doJSON(t, app, "GET", "/v1/cities/3f0f1a3e-0000-4000-8000-000000000000", "")
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestCountryCounts_RequiresRegion(t *testing.T) {
	app := setupApp(makeDeps(nil))

	status, _ := doJSON(t, app, "GET", "/v1/cities/counts/countries", "")
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestDescription(t *testing.T) {
	repo := &mockCityRepo{
		descriptionsFn: func(ctx context.Context, region, country, city string) ([]string, error) {
			return []string{"Canals.", "", "Bikes."}, nil
		},
	}
	app := setupApp(makeDeps(repo))

	status, body := doJSON(t, app, "GET", "/v1/cities/description?city=Amsterdam", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var out struct {
		Text string `json:"text"`
	}
	json.Unmarshal(body, &out)
	if out.Text != "Canals. Bikes." {
		t.Errorf("unexpected text %q", out.Text)
	}
}

func TestLegacyPaths_Deprecated(t *testing.T) {
	app := setupApp(makeDeps(nil))

	req := httptest.NewRequest("GET", "/search_countries", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header")
	}
	if resp.Header.Get("Sunset") == "" {
		t.Error("expected Sunset header")
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, "/v1/countries") {
		t.Errorf("expected successor link, got %q", link)
	}

	var countries []string
	json.NewDecoder(resp.Body).Decode(&countries)
	if len(countries) != 2 {
		t.Errorf("expected 2 countries, got %v", countries)
	}
}

// ---- GraphQL ----

func TestGraphQL_JourneyRoundTrip(t *testing.T) {
	app := setupApp(makeDeps(nil))
	sid := newSession(t, app)
	doJSON(t, app, "POST", "/v1/sessions/"+sid+"/journey/cities",
		`{"id":"p","city":"Paris","latitude":48.85,"longitude":2.35}`)

	query := `{"query":"query($sid: String!) { journey(session_id: $sid) { ids coordinates cities { city budget_level } } }","variables":{"sid":"` + sid + `"}}`
	status, body := doJSON(t, app, "POST", "/graphql", query)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var out struct {
		Data struct {
			Journey struct {
				IDs         []string    `json:"ids"`
				Coordinates [][]float64 `json:"coordinates"`
				Cities      []struct {
					City        string `json:"city"`
					BudgetLevel string `json:"budget_level"`
				} `json:"cities"`
			} `json:"journey"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", out.Errors)
	}
	j := out.Data.Journey
	if len(j.IDs) != 1 || j.IDs[0] != "p" || j.Coordinates[0][0] != 48.85 || j.Cities[0].BudgetLevel != "N/A" {
		t.Fatalf("unexpected journey %+v", j)
	}
}

// ---- System endpoints ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps(nil))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", body["status"])
	}
	if _, ok := body["sessions"]; !ok {
		t.Error("expected session count in health body")
	}
}

func TestReady_NoDB(t *testing.T) {
	app := setupApp(makeDeps(nil))

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503 without DB, got %d", resp.StatusCode)
	}
}

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps(nil))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if v := resp.Header.Get("X-API-Version"); v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}
