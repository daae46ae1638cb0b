package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/CharacterVault/internal/app/apperr"
	"go.uber.org/zap"
)

// Recovery turns a panic further down the chain into an *apperr.PanicError
// so the error handler renders it as a 500.
func Recovery(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()
			fields := []zap.Field{
				zap.Any("panic", r),
				zap.ByteString("stack", stack),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
			}
			if rid, ok := c.Locals(RequestIDKey).(string); ok {
				fields = append(fields, zap.String("request_id", rid))
			}
			logger.Error("panic recovered", fields...)

			err = &apperr.PanicError{Value: r, Stack: stack}
		}()

		return c.Next()
	}
}
