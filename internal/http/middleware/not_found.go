package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/CharacterVault/internal/app/apperr"
)

// NotFoundBody is the envelope returned for unmatched routes.
type NotFoundBody struct {
	Success bool `json:"success"`
	Error   struct {
		Message string      `json:"message"`
		Code    apperr.Code `json:"code"`
	} `json:"error"`
}

// NotFound answers every request that reached the end of the route table.
func NotFound() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body NotFoundBody
		body.Error.Message = fmt.Sprintf("Route %s %s not found", c.Method(), c.Path())
		body.Error.Code = apperr.CodeRouteNotFound
		return c.Status(fiber.StatusNotFound).JSON(body)
	}
}
