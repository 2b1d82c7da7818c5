package factory

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/sentinel-seed/sentinel/pkg/domain/embedding"
	"github.com/sentinel-seed/sentinel/pkg/infra/embedding/openai"
)

// EmbeddingServiceLocator resolves an embedding provider by name.
type EmbeddingServiceLocator interface {
	Resolve(provider string) (embedding.Creator, error)
}

type locator struct {
	services map[string]embedding.Creator
}

func NewEmbeddingServiceLocator(client *fasthttp.Client, logger *logrus.Logger, timeout time.Duration) EmbeddingServiceLocator {
	return &locator{
		services: map[string]embedding.Creator{
			"openai": openai.NewOpenAIEmbeddingService(client, logger, timeout),
		},
	}
}

func (l *locator) Resolve(provider string) (embedding.Creator, error) {
	service, ok := l.services[provider]
	if !ok {
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
	return service, nil
}
