package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/travelcities/internal/core/domain"
	"github.com/samirrijal/travelcities/internal/pkg/geospatial"
)

// journeyResponse is the body returned by journey reads and mutations.
type journeyResponse struct {
	SessionID string               `json:"session_id"`
	Cities    []domain.JourneyCity `json:"cities"`
}

// addCityRequest carries either a full city record or a catalog reference.
type addCityRequest struct {
	CatalogID string `json:"catalog_id,omitempty"`
	domain.CityInput
}

type setJourneyRequest struct {
	Cities []domain.JourneyCity `json:"cities"`
}

// CreateSessionHandler opens a new, empty journey.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := deps.Journeys.StartSession(c.UserContext())
		c.Location("/v1/sessions/" + sid + "/journey")
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session_id": sid})
	}
}

// DeleteSessionHandler discards a journey and its session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Journeys.EndSession(c.UserContext(), c.Params("sid")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetJourneyHandler returns the journey cities in order.
func GetJourneyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return respondJourney(c, deps, fiber.StatusOK)
	}
}

// JourneyIDsHandler returns the journey city ids in order.
func JourneyIDsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids, err := deps.Journeys.CityIDs(c.UserContext(), c.Params("sid"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(ids)
	}
}

// JourneyCoordinatesHandler returns [lat, lon] pairs in journey order.
func JourneyCoordinatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		coords, err := deps.Journeys.Coordinates(c.UserContext(), c.Params("sid"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(coords)
	}
}

// AddJourneyCityHandler appends a city unless its id is already present.
// Responds 201 when the journey changed and 200 for a duplicate.
func AddJourneyCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addCityRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		ctx := c.UserContext()
		sid := c.Params("sid")

		var added bool
		var err error
		switch {
		case req.CatalogID != "":
			added, err = deps.Journeys.AddCatalogCity(ctx, sid, req.CatalogID)
		case req.ID == "":
			return errBadRequest(c, "id or catalog_id is required")
		case !geospatial.ValidCoordinate(req.Latitude, req.Longitude):
			return errBadRequest(c, "latitude must be within [-90, 90] and longitude within [-180, 180]")
		default:
			added, err = deps.Journeys.AddCity(ctx, sid, req.CityInput)
		}
		if err != nil {
			return errFromDomain(c, err)
		}

		status := fiber.StatusOK
		if added {
			status = fiber.StatusCreated
		}
		return respondJourney(c, deps, status)
	}
}

// RemoveJourneyCityHandler removes a city by id. Unknown ids are a no-op.
func RemoveJourneyCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := deps.Journeys.RemoveCity(c.UserContext(), c.Params("sid"), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return respondJourney(c, deps, fiber.StatusOK)
	}
}

// SetJourneyHandler replaces the journey with a previously saved list, verbatim.
func SetJourneyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req setJourneyRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Cities == nil {
			return errBadRequest(c, "cities is required")
		}
		if err := deps.Journeys.SetCities(c.UserContext(), c.Params("sid"), req.Cities); err != nil {
			return errFromDomain(c, err)
		}
		return respondJourney(c, deps, fiber.StatusOK)
	}
}

// ClearJourneyHandler empties the journey but keeps the session.
func ClearJourneyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Journeys.Clear(c.UserContext(), c.Params("sid")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ConfirmJourneyHandler returns the ordered city names and announces the confirmation.
func ConfirmJourneyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		route, err := deps.Journeys.Confirm(c.UserContext(), c.Params("sid"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"route": route})
	}
}

func respondJourney(c *fiber.Ctx, deps *Dependencies, status int) error {
	sid := c.Params("sid")
	cities, err := deps.Journeys.Cities(c.UserContext(), sid)
	if err != nil {
		return errFromDomain(c, err)
	}
	return c.Status(status).JSON(journeyResponse{SessionID: sid, Cities: cities})
}
