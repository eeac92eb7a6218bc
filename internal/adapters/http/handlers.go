package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/travelcities/internal/core/domain"
)

// recommendRequest mirrors the body accepted by the recommendation endpoint.
// Weights are decoded loosely so a single non-numeric entry is skipped
// instead of rejecting the request.
type recommendRequest struct {
	RankWeights map[string]interface{} `json:"rank_weights"`
	Filters     domain.CityFilter      `json:"filters"`
	Limit       int                    `json:"limit"`
	Offset      int                    `json:"offset"`
}

func filterFromQuery(c *fiber.Ctx) domain.CityFilter {
	return domain.CityFilter{
		City:        c.Query("city"),
		Region:      c.Query("region"),
		BudgetLevel: c.Query("budget_level"),
		Limit:       c.QueryInt("limit", 0),
		Offset:      c.QueryInt("offset", 0),
	}
}

// SearchCitiesHandler filters catalog cities by name, region and budget level.
func SearchCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := filterFromQuery(c)
		if len(f.City) > 200 || len(f.Region) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		cities, err := deps.Catalog.Search(c.UserContext(), f)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(cities)
	}
}

// RecommendCitiesHandler ranks cities by weighted ratings.
func RecommendCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req recommendRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.RankWeights == nil {
			return errBadRequest(c, "missing 'rank_weights' in request body")
		}

		weights := make(domain.RankWeights, len(req.RankWeights))
		for category, raw := range req.RankWeights {
			w, ok := raw.(float64)
			if !ok {
				LoggerFromCtx(c.UserContext()).Warn("skipping non-numeric rank weight", "category", category)
				continue
			}
			weights[category] = w
		}

		filter := req.Filters
		filter.Limit, filter.Offset = req.Limit, req.Offset

		cities, err := deps.Catalog.Recommend(c.UserContext(), weights, filter)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(cities)
	}
}

// GetCityHandler returns a single catalog city by id.
func GetCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "city id is required")
		}
		city, err := deps.Catalog.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(city)
	}
}

// RegionCountsHandler returns [{name, value}] city counts per region.
func RegionCountsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		counts, err := deps.Catalog.RegionCounts(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(counts)
	}
}

// CountryCountsHandler returns city counts per country within ?region=.
func CountryCountsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		counts, err := deps.Catalog.CountryCounts(c.UserContext(), c.Query("region"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(counts)
	}
}

// DescriptionHandler joins the short descriptions for a city, country or region.
func DescriptionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		text, err := deps.Catalog.Description(c.UserContext(), c.Query("region"), c.Query("country"), c.Query("city"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"text": text})
	}
}

// CountriesHandler lists distinct countries, optionally within ?region=.
func CountriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		countries, err := deps.Catalog.Countries(c.UserContext(), c.Query("region"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(countries)
	}
}
