package router

import (
	"database/sql"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/handlers"
	"github.com/biosecret/go-todo/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes registers every route. Protected routes verify the token
// before a database connection is acquired.
func SetupRoutes(app *fiber.App, db *sql.DB, h *handlers.Handlers) {
	app.Get("/health", handlers.HandleHealthCheck)

	scope := database.Scope(db)

	auth := app.Group("/auth")
	auth.Post("/register", scope, h.RegisterHandler)
	auth.Post("/login", scope, h.LoginHandler)
	auth.Post("/logout", h.LogoutHandler)

	lists := app.Group("/lists", middleware.JWTMiddleware(h.Tokens), scope)

	lists.Get("/", h.HandleAllLists)
	lists.Post("/", h.HandleCreateList)
	lists.Get("/:id", h.HandleGetOneList)
	lists.Put("/:id", h.HandleUpdateList)
	lists.Delete("/:id", h.HandleDeleteList)

	lists.Get("/:id/items", h.HandleAllItems)
	lists.Post("/:id/items", h.HandleCreateItem)
	lists.Get("/:id/items/:item_id", h.HandleGetOneItem)
	lists.Put("/:id/items/:item_id", h.HandleUpdateItem)
	lists.Delete("/:id/items/:item_id", h.HandleDeleteItem)
}
