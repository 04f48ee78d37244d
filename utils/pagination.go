package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/biosecret/go-todo/models"
	"github.com/gofiber/fiber/v2"
)

// ParsePagination đọc page và per_page từ query string. Missing values take
// the defaults, per_page is capped at MaxPerPage, anything non-numeric or
// below 1 is rejected. A page whose offset would overflow an int is
// rejected as well.
func ParsePagination(c *fiber.Ctx) (models.Pagination, error) {
	page, err := positiveQuery(c, "page", models.DefaultPage)
	if err != nil {
		return models.Pagination{}, err
	}
	perPage, err := positiveQuery(c, "per_page", models.DefaultPerPage)
	if err != nil {
		return models.Pagination{}, err
	}
	if perPage > models.MaxPerPage {
		perPage = models.MaxPerPage
	}
	if page-1 > math.MaxInt/perPage {
		return models.Pagination{}, &models.ValidationError{Field: "page", Message: "is too large"}
	}
	return models.Pagination{Page: page, PerPage: perPage}, nil
}

func positiveQuery(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &models.ValidationError{Field: key, Message: "must be a positive integer"}
	}
	return n, nil
}
