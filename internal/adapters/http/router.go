package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/travelcities/api"
	"github.com/samirrijal/travelcities/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())

	// Trace span and request-scoped logger
	app.Use(RequestContextMiddleware())

	app.Use(AccessLogMiddleware("/metrics", "/v1/health"))

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware(legacyRoutes))

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Journey sessions
	v1.Post("/sessions", CreateSessionHandler(deps))
	v1.Delete("/sessions/:sid", DeleteSessionHandler(deps))
	v1.Get("/sessions/:sid/journey", GetJourneyHandler(deps))
	v1.Put("/sessions/:sid/journey", SetJourneyHandler(deps))
	v1.Delete("/sessions/:sid/journey", ClearJourneyHandler(deps))
	v1.Get("/sessions/:sid/journey/ids", JourneyIDsHandler(deps))
	v1.Get("/sessions/:sid/journey/coordinates", JourneyCoordinatesHandler(deps))
	v1.Post("/sessions/:sid/journey/cities", timeout.NewWithContext(AddJourneyCityHandler(deps), requestTimeout))
	v1.Delete("/sessions/:sid/journey/cities/:id", RemoveJourneyCityHandler(deps))
	v1.Post("/sessions/:sid/journey/confirm", timeout.NewWithContext(ConfirmJourneyHandler(deps), requestTimeout))

	// Catalog. Static paths before /cities/:id.
	v1.Get("/cities/search", timeout.NewWithContext(SearchCitiesHandler(deps), requestTimeout))
	v1.Post("/cities/recommend", timeout.NewWithContext(RecommendCitiesHandler(deps), requestTimeout))
	v1.Get("/cities/counts/regions", timeout.NewWithContext(RegionCountsHandler(deps), requestTimeout))
	v1.Get("/cities/counts/countries", timeout.NewWithContext(CountryCountsHandler(deps), requestTimeout))
	v1.Get("/cities/description", timeout.NewWithContext(DescriptionHandler(deps), requestTimeout))
	v1.Get("/cities/:id", timeout.NewWithContext(GetCityHandler(deps), requestTimeout))
	v1.Get("/countries", timeout.NewWithContext(CountriesHandler(deps), requestTimeout))

	// Legacy unversioned catalog paths, see legacyRoutes
	app.Get("/search_cities", timeout.NewWithContext(SearchCitiesHandler(deps), requestTimeout))
	app.Post("/recommend", timeout.NewWithContext(RecommendCitiesHandler(deps), requestTimeout))
	app.Get("/city_counts_by_region", timeout.NewWithContext(RegionCountsHandler(deps), requestTimeout))
	app.Get("/city_counts_by_country_in_region", timeout.NewWithContext(CountryCountsHandler(deps), requestTimeout))
	app.Get("/get_short_description_text", timeout.NewWithContext(DescriptionHandler(deps), requestTimeout))
	app.Get("/search_countries", timeout.NewWithContext(CountriesHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, api.OpenAPI, loadAPIDoc(api.Load))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	var sessionExists func(string) bool
	if deps.Journeys != nil {
		sessionExists = deps.Journeys.HasSession
	}
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS, sessionExists)))
}
