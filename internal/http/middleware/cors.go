package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS allows the configured origin. Credentials are only advertised for an
// explicit origin.
func CORS(origin string, credentials bool) fiber.Handler {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		origin = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origin,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization," + RequestIDHeader,
		ExposeHeaders:    "Content-Length,Content-Type," + RequestIDHeader,
		AllowCredentials: credentials && origin != "*",
		MaxAge:           86400,
	})
}
