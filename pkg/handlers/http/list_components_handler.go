package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/registry"
)

type listComponentsHandler struct {
	logger    *logrus.Logger
	detectors *registry.Registry
	checkers  *registry.Registry
}

func NewListComponentsHandler(logger *logrus.Logger, detectors, checkers *registry.Registry) Handler {
	return &listComponentsHandler{
		logger:    logger,
		detectors: detectors,
		checkers:  checkers,
	}
}

func (h *listComponentsHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"detectors": h.detectors.Components(),
		"checkers":  h.checkers.Components(),
	})
}
