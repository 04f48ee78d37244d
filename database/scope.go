package database

import (
	"database/sql"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const connKey = "db_conn"

// Scope acquires one connection from the pool for the lifetime of the
// request. The connection goes back to the pool when the rest of the
// chain returns, whether it succeeded, failed or panicked.
func Scope(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		conn, err := db.Conn(c.UserContext())
		if err != nil {
			return fmt.Errorf("acquire connection: %w", err)
		}
		defer conn.Close()

		c.Locals(connKey, conn)
		defer c.Locals(connKey, nil)
		return c.Next()
	}
}

// Conn returns the connection acquired by Scope for this request.
func Conn(c *fiber.Ctx) (Querier, error) {
	conn, ok := c.Locals(connKey).(*sql.Conn)
	if !ok || conn == nil {
		return nil, fmt.Errorf("no database connection in request scope")
	}
	return conn, nil
}
