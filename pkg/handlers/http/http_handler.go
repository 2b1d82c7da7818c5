package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(c *fiber.Ctx) error
}

// HandlerTransport groups every HTTP handler the server mounts.
type HandlerTransport struct {
	ValidateInputHandler  Handler
	ValidateOutputHandler Handler
	ObserveHandler        Handler
	ListComponentsHandler Handler
}
