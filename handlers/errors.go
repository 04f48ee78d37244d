package handlers

import (
	"errors"

	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/repository"
	"github.com/biosecret/go-todo/token"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// ErrorHandler renders every error as {"error": "..."}. Unexpected errors
// are logged and answered with a generic 500 so internals never reach the
// client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var (
		fe   *fiber.Error
		verr *models.ValidationError
	)
	switch {
	case errors.As(err, &fe):
		code, msg = fe.Code, fe.Message
	case errors.As(err, &verr):
		code, msg = fiber.StatusBadRequest, verr.Error()
	case errors.Is(err, repository.ErrNotFound):
		code, msg = fiber.StatusNotFound, "not found"
	case errors.Is(err, repository.ErrConflict):
		code, msg = fiber.StatusConflict, err.Error()
	case errors.Is(err, repository.ErrInvalidCredentials):
		code, msg = fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, token.ErrExpired), errors.Is(err, token.ErrInvalid):
		code, msg = fiber.StatusUnauthorized, err.Error()
	}

	if code >= fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// notFound turns repository.ErrNotFound into a 404 naming the resource.
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, what+" not found")
	}
	return err
}
