package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/types"
	"github.com/sentinel-seed/sentinel/pkg/validator"
)

type observeRequest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

type observeHandler struct {
	logger   *logrus.Logger
	observer validator.ExchangeObserver
}

func NewObserveHandler(logger *logrus.Logger, observer validator.ExchangeObserver) Handler {
	return &observeHandler{
		logger:   logger,
		observer: observer,
	}
}

func (h *observeHandler) Handle(c *fiber.Ctx) error {
	if h.observer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "observer is not configured"})
	}

	var req observeRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.observer.Observe(c.Context(), req.Input, req.Output)
	if err != nil {
		h.logger.WithError(err).Error("observation failed")
		if errors.Is(err, types.ErrProviderUnavailable) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
