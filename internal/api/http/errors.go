package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-gateway/internal/weather"
)

// ErrorHandler renders every error as {"error": "<message>"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

// toHTTPError maps domain errors onto status codes. fallback is used for
// anything that is not a validation, not-found or upstream error.
func toHTTPError(logger *zap.Logger, err error, fallback string) error {
	var (
		ve *weather.ValidationError
		nf *weather.NotFoundError
		ue *weather.UpstreamError
	)

	switch {
	case errors.As(err, &ve):
		return fiber.NewError(fiber.StatusBadRequest, ve.Message)
	case errors.As(err, &nf):
		return fiber.NewError(fiber.StatusNotFound, nf.Error())
	case errors.As(err, &ue):
		logger.Warn("upstream request failed", zap.Error(err))
		return fiber.NewError(ue.HTTPStatus(), ue.PublicMessage())
	default:
		logger.Error(fallback, zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}
