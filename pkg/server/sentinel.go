package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/config"
	handlers "github.com/sentinel-seed/sentinel/pkg/handlers/http"
)

type (
	SentinelServerDI struct {
		HandlerTransport handlers.HandlerTransport
		Config           *config.Config
		Logger           *logrus.Logger
	}
	SentinelServer struct {
		*BaseServer
		handlerTransport handlers.HandlerTransport
	}
)

func NewSentinelServer(di SentinelServerDI) *SentinelServer {
	return &SentinelServer{
		BaseServer:       NewBaseServer(di.Config, di.Logger),
		handlerTransport: di.HandlerTransport,
	}
}

func (s *SentinelServer) Run() error {
	s.router.Use(recover.New())
	s.setupRoutes()
	s.setupHealthCheck()
	s.setupMetricsEndpoint()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.WithField("addr", addr).Info("starting validation server")
	return s.router.Listen(addr)
}

func (s *SentinelServer) setupRoutes() {
	v1 := s.router.Group("/v1")
	{
		validate := v1.Group("/validate")
		{
			validate.Post("/input", s.handlerTransport.ValidateInputHandler.Handle)
			validate.Post("/output", s.handlerTransport.ValidateOutputHandler.Handle)
		}
		v1.Post("/observe", s.handlerTransport.ObserveHandler.Handle)
		v1.Get("/components", s.handlerTransport.ListComponentsHandler.Handle)
	}
}

func (s *SentinelServer) Shutdown() error {
	return s.router.Shutdown()
}
