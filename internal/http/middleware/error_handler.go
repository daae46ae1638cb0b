package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/CharacterVault/internal/app/apperr"
	"go.uber.org/zap"
)

// ErrorBody is the JSON shape of every error response except unmatched routes.
type ErrorBody struct {
	Message string         `json:"message"`
	Code    apperr.Code    `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler renders typed application errors. Outside production, 5xx
// responses carry the original message and recovered panics their stack.
func ErrorHandler(logger *zap.Logger, production bool) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		status, body := Classify(err)

		if !production && status >= fiber.StatusInternalServerError {
			if body.Details == nil {
				body.Details = map[string]any{}
			}
			body.Details["originalMessage"] = err.Error()
			var pe *apperr.PanicError
			if errors.As(err, &pe) {
				body.Details["stack"] = string(pe.Stack)
			}
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("code", string(body.Code)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		}
		if rid, ok := c.Locals(RequestIDKey).(string); ok {
			fields = append(fields, zap.String("request_id", rid))
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}

		return c.Status(status).JSON(body)
	}
}

// Classify maps an error onto its HTTP status and client-facing body.
func Classify(err error) (int, ErrorBody) {
	var (
		ve  *apperr.ValidationError
		je  *apperr.InvalidJSONError
		bre *apperr.BusinessRuleError
		nfe *apperr.NotFoundError
		se  *apperr.StoreError
		fe  *fiber.Error
	)

	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ErrorBody{
			Message: ve.Message,
			Code:    apperr.CodeValidation,
			Details: map[string]any{"errors": ve.Errors},
		}
	case errors.As(err, &je):
		return fiber.StatusBadRequest, ErrorBody{Message: "Invalid JSON format", Code: apperr.CodeInvalidJSON}
	case errors.As(err, &bre):
		body := ErrorBody{Message: bre.Message, Code: apperr.CodeBusinessRule}
		if bre.Rule != "" {
			body.Details = map[string]any{"rule": bre.Rule}
		}
		return fiber.StatusUnprocessableEntity, body
	case errors.As(err, &nfe):
		return fiber.StatusNotFound, ErrorBody{Message: nfe.Error(), Code: apperr.CodeNotFound}
	case errors.As(err, &se):
		return fiber.StatusInternalServerError, ErrorBody{Message: "Database operation failed", Code: apperr.CodeDatabase}
	case errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError:
		return fe.Code, ErrorBody{Message: fe.Message, Code: statusCode(fe.Code)}
	default:
		return fiber.StatusInternalServerError, ErrorBody{
			Message: "An internal server error occurred",
			Code:    apperr.CodeInternal,
		}
	}
}

// statusCode turns 413 into "REQUEST_ENTITY_TOO_LARGE" and so on.
func statusCode(status int) apperr.Code {
	text := http.StatusText(status)
	if text == "" {
		return apperr.CodeInternal
	}
	return apperr.Code(strings.ToUpper(strings.ReplaceAll(text, " ", "_")))
}
