package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/types"
	"github.com/sentinel-seed/sentinel/pkg/validator"
)

type validateInputRequest struct {
	Text    string       `json:"text"`
	History []types.Turn `json:"history,omitempty"`
}

type validateInputHandler struct {
	logger    *logrus.Logger
	validator *validator.InputValidator
}

func NewValidateInputHandler(logger *logrus.Logger, v *validator.InputValidator) Handler {
	return &validateInputHandler{
		logger:    logger,
		validator: v,
	}
}

func (h *validateInputHandler) Handle(c *fiber.Ctx) error {
	var req validateInputRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.validator.Validate(c.Context(), req.Text, req.History)
	if err != nil {
		var sizeErr *types.InputSizeError
		if errors.As(err, &sizeErr) {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("input validation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
