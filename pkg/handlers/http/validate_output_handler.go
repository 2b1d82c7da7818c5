package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/types"
	"github.com/sentinel-seed/sentinel/pkg/validator"
)

type validateOutputRequest struct {
	Output  string       `json:"output"`
	Input   string       `json:"input,omitempty"`
	History []types.Turn `json:"history,omitempty"`
}

type validateOutputHandler struct {
	logger    *logrus.Logger
	validator *validator.OutputValidator
}

func NewValidateOutputHandler(logger *logrus.Logger, v *validator.OutputValidator) Handler {
	return &validateOutputHandler{
		logger:    logger,
		validator: v,
	}
}

func (h *validateOutputHandler) Handle(c *fiber.Ctx) error {
	var req validateOutputRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.validator.Validate(c.Context(), req.Output, req.Input, req.History)
	if err != nil {
		var sizeErr *types.InputSizeError
		if errors.As(err, &sizeErr) {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("output validation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
