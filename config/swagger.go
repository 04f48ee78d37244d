package config

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "github.com/biosecret/go-todo/docs"
)

// AddSwaggerRoutes mounts the API docs under /swagger. The document is
// registered by the docs package.
func AddSwaggerRoutes(app *fiber.App) {
	app.Get("/swagger", func(c *fiber.Ctx) error {
		return c.Redirect("/swagger/index.html", fiber.StatusMovedPermanently)
	})
	app.Get("/swagger/*", swagger.HandlerDefault)
}
