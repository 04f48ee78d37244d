package handlers

import (
	"errors"
	"time"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/token"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Handlers holds what the route handlers share. Storage is not here: each
// request uses the connection acquired by database.Scope.
type Handlers struct {
	Tokens     *token.Service
	Events     events.Publisher
	BcryptCost int
}

func New(tokens *token.Service, pub events.Publisher, bcryptCost int) *Handlers {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Handlers{Tokens: tokens, Events: pub, BcryptCost: bcryptCost}
}

// HandleHealthCheck godoc
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   /health [get]
func HandleHealthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// parseBody decodes the JSON body into out. Validation errors raised while
// decoding (for example an unknown status) are kept as they are.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

func conn(c *fiber.Ctx) (database.Querier, error) {
	return database.Conn(c)
}

func (h *Handlers) publish(ev events.Event) {
	ev.At = time.Now().UTC()
	if err := h.Events.Publish(ev); err != nil {
		log.Warnf("publish %s for list %s: %v", ev.Type, ev.ListID, err)
	}
}

func message(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": msg})
}
