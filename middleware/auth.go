package middleware

import (
	"errors"
	"strings"

	"github.com/biosecret/go-todo/token"
	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// Verifier is the part of the token service the gate needs.
type Verifier interface {
	Verify(raw string) (token.Identity, error)
}

// JWTMiddleware xác thực access token. It never touches storage; on success
// the identity is available to later handlers through Identity.
func JWTMiddleware(v Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Lấy token từ header Authorization
		authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}

		// Tách "Bearer <token>"
		scheme, raw, ok := strings.Cut(authHeader, " ")
		raw = strings.TrimSpace(raw)
		if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token format")
		}

		id, err := v.Verify(raw)
		switch {
		case errors.Is(err, token.ErrExpired):
			return fiber.NewError(fiber.StatusUnauthorized, "token has expired")
		case err != nil:
			return fiber.NewError(fiber.StatusUnauthorized, "token is invalid")
		}

		c.Locals(identityKey, id)
		defer c.Locals(identityKey, nil)
		return c.Next()
	}
}

// Identity returns the caller attached by JWTMiddleware.
func Identity(c *fiber.Ctx) (token.Identity, error) {
	id, ok := c.Locals(identityKey).(token.Identity)
	if !ok || id.UserID == "" {
		return token.Identity{}, fiber.NewError(fiber.StatusUnauthorized, "missing identity")
	}
	return id, nil
}
