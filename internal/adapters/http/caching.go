package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// cacheRule maps a path prefix (or exact path when exact is set) to a Cache-Control value.
type cacheRule struct {
	prefix string
	exact  bool
	value  string
}

// cacheRules are checked in order; the first match wins.
var cacheRules = []cacheRule{
	{prefix: "/v1/health", exact: true, value: "public, max-age=10"},
	{prefix: "/v1/ready", exact: true, value: "public, max-age=10"},
	{prefix: "/metrics", exact: true, value: "no-cache"},
	{prefix: "/graphql", exact: true, value: "private, max-age=0"},
	{prefix: "/v1/sessions/", value: "no-store"},
	{prefix: "/v1/cities/counts", value: "public, max-age=3600"},
	{prefix: "/v1/", value: "public, max-age=300"},
}

// CachingMiddleware sets Cache-Control on GET responses that do not carry one.
// Legacy paths inherit the policy of their /v1 successor.
func CachingMiddleware() fiber.Handler {
	successors := make(map[string]string, len(legacyRoutes))
	for _, r := range legacyRoutes {
		successors[r.Path] = r.Alternative
	}

	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}

		path := c.Path()
		if alt, ok := successors[path]; ok {
			path = alt
		}
		if v := cacheControlFor(path); v != "" {
			c.Set(fiber.HeaderCacheControl, v)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	for _, r := range cacheRules {
		if r.exact && path == r.prefix {
			return r.value
		}
		if !r.exact && strings.HasPrefix(path, r.prefix) {
			return r.value
		}
	}
	return ""
}
