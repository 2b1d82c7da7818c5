package server

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-seed/sentinel/pkg/config"
	handlers "github.com/sentinel-seed/sentinel/pkg/handlers/http"
)

func newTestServer() *SentinelServer {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewSentinelServer(SentinelServerDI{
		Config:           cfg,
		Logger:           logger,
		HandlerTransport: handlers.HandlerTransport{},
	})
}

func TestNewSentinelServerBuildsBase(t *testing.T) {
	srv := newTestServer()

	require.NotNil(t, srv)
	assert.NotNil(t, srv.BaseServer)
	assert.NotNil(t, srv.router)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()
	srv.setupHealthCheck()

	resp, err := srv.router.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
