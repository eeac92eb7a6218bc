package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/travelcities/internal/adapters/postgres"
	"github.com/samirrijal/travelcities/internal/adapters/valkey"
	"github.com/samirrijal/travelcities/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// NATS, DB and Cache are optional and only used for readiness and the WebSocket relay.
type Dependencies struct {
	Journeys *usecases.JourneyService
	Catalog  *usecases.CatalogService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
