package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/park-explorer/internal/park"
)

// ErrorHandler is the centralized Fiber error handler. Upstream details stay
// in the logs; responses carry only a generic message and a code.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		status, body := errorResponse(err)
		if id, ok := c.Locals(requestIDKey).(string); ok && id != "" {
			body["requestId"] = id
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}

		return c.Status(status).JSON(body)
	}
}

func errorResponse(err error) (int, fiber.Map) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fiber.Map{"error": fe.Message}
	}

	var pe *park.Error
	if errors.As(err, &pe) {
		switch pe.Kind {
		case park.KindInvalidInput:
			return fiber.StatusBadRequest, fiber.Map{"error": pe.Error(), "code": string(pe.Kind)}
		case park.KindNotFound:
			return fiber.StatusNotFound, fiber.Map{"error": "Park not found", "code": string(pe.Kind)}
		case park.KindClientRequest:
			return fiber.StatusBadGateway, fiber.Map{
				"error":          "Upstream rejected the request",
				"code":           "upstream_rejected",
				"upstreamStatus": pe.Status,
			}
		case park.KindTransientUpstream:
			return fiber.StatusBadGateway, fiber.Map{"error": "Upstream service unavailable", "code": "upstream_unavailable"}
		case park.KindMalformedResponse:
			return fiber.StatusBadGateway, fiber.Map{"error": "Upstream returned an unexpected response", "code": string(pe.Kind)}
		case park.KindConfiguration:
			return fiber.StatusInternalServerError, fiber.Map{"error": "Service is not configured", "code": string(pe.Kind)}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fiber.StatusGatewayTimeout, fiber.Map{"error": "Request timed out"}
	}
	return fiber.StatusInternalServerError, fiber.Map{"error": "Internal server error"}
}
