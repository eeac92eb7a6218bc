package http

import (
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Travel Cities API - Swagger UI</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '/docs/openapi.json', dom_id: '#swagger-ui', deepLinking: true});
  </script>
</body>
</html>`

// SetupDocs serves Swagger UI at /docs plus the OpenAPI document as YAML and JSON.
// doc may be nil, in which case only the raw YAML is served.
func SetupDocs(app *fiber.App, raw []byte, doc *openapi3.T) {
	docs := app.Group("/docs")

	docs.Get("/", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(swaggerUIHTML)
	})

	docs.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(raw)
	})

	docs.Get("/openapi.json", func(c *fiber.Ctx) error {
		if doc == nil {
			return errNotFound(c, "openapi document unavailable")
		}
		return c.JSON(doc)
	})
}

// loadAPIDoc returns nil, after logging, when the document does not validate.
func loadAPIDoc(load func() (*openapi3.T, error)) *openapi3.T {
	doc, err := load()
	if err != nil {
		slog.Warn("openapi document invalid", "error", err)
		return nil
	}
	return doc
}
