package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecatedRoute marks an endpoint as deprecated with sunset date.
type DeprecatedRoute struct {
	Path        string    // Route pattern, ":name" segments match anything
	SunsetDate  time.Time // Date when endpoint will be removed
	Alternative string    // Recommended alternative endpoint (optional)
}

// legacySunset is when the unversioned catalog paths stop being served.
var legacySunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// legacyRoutes are the unversioned catalog paths older clients still call.
var legacyRoutes = []DeprecatedRoute{
	{Path: "/search_cities", SunsetDate: legacySunset, Alternative: "/v1/cities/search"},
	{Path: "/recommend", SunsetDate: legacySunset, Alternative: "/v1/cities/recommend"},
	{Path: "/city_counts_by_region", SunsetDate: legacySunset, Alternative: "/v1/cities/counts/regions"},
	{Path: "/city_counts_by_country_in_region", SunsetDate: legacySunset, Alternative: "/v1/cities/counts/countries"},
	{Path: "/get_short_description_text", SunsetDate: legacySunset, Alternative: "/v1/cities/description"},
	{Path: "/search_countries", SunsetDate: legacySunset, Alternative: "/v1/countries"},
}

// DeprecationMiddleware adds Deprecation, Sunset, and Link headers to deprecated endpoints.
func DeprecationMiddleware(deprecated []DeprecatedRoute) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, d := range deprecated {
			if !matchPattern(c.Path(), d.Path) {
				continue
			}
			// RFC 8594
			c.Set("Deprecation", "true")
			c.Set("Sunset", d.SunsetDate.UTC().Format(time.RFC1123))

			// RFC 8288
			if d.Alternative != "" {
				c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, d.Alternative))
			}

			days := time.Until(d.SunsetDate).Hours() / 24
			c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))
			break
		}

		return c.Next()
	}
}

// matchPattern reports whether path matches pattern segment by segment,
// e.g. "/v1/cities/:id" matches "/v1/cities/abc-123".
func matchPattern(path, pattern string) bool {
	if path == pattern {
		return true
	}
	ps := strings.Split(strings.Trim(path, "/"), "/")
	qs := strings.Split(strings.Trim(pattern, "/"), "/")
	if len(ps) != len(qs) {
		return false
	}
	for i := range qs {
		if strings.HasPrefix(qs[i], ":") {
			if ps[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != qs[i] {
			return false
		}
	}
	return true
}
