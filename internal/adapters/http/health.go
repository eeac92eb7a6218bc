package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readyTimeout = 3 * time.Second

var errDisconnected = errors.New("disconnected")

// probe is one readiness dependency. A nil check means "not configured".
type probe struct {
	name     string
	required bool
	check    func(ctx context.Context) error
}

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := buildVersion()

	return func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": version,
		}
		if deps.Journeys != nil {
			body["sessions"] = deps.Journeys.SessionCount()
		}
		return c.JSON(body)
	}
}

// ReadyHandler reports 503 when a required dependency is down. The database
// is required; NATS and the cache only degrade confirmations and caching.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	probes := []probe{{name: "database", required: true}, {name: "nats"}, {name: "cache"}}
	if deps.DB != nil {
		probes[0].check = func(ctx context.Context) error { return deps.DB.Pool.Ping(ctx) }
	}
	if deps.NATS != nil {
		probes[1].check = func(context.Context) error {
			if !deps.NATS.IsConnected() {
				return errDisconnected
			}
			return nil
		}
	}
	if deps.Cache != nil {
		probes[2].check = deps.Cache.Ping
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(probes))
		ready := true
		for _, p := range probes {
			result := runProbe(ctx, p)
			checks[p.name] = result
			if result != "ok" && (p.required || p.check != nil) {
				ready = false
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": checks})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": checks})
	}
}

func runProbe(ctx context.Context, p probe) string {
	if p.check == nil {
		return "not configured"
	}
	if err := p.check(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}
