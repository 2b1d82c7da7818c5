package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/sentinel-seed/sentinel/pkg/domain/embedding"
	"github.com/sentinel-seed/sentinel/pkg/infra/metrics"
	"github.com/sentinel-seed/sentinel/pkg/types"
)

const (
	openAIEmbeddingsURL   = "https://api.openai.com/v1/embeddings"
	defaultModel          = "text-embedding-3-small"
	defaultRequestTimeout = 10 * time.Second
)

type embeddingService struct {
	client  *fasthttp.Client
	logger  *logrus.Logger
	timeout time.Duration
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingData struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type openAIEmbeddingResponse struct {
	Data []embeddingData `json:"data"`
}

func NewOpenAIEmbeddingService(client *fasthttp.Client, logger *logrus.Logger, timeout time.Duration) embedding.Creator {
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	return &embeddingService{
		client:  client,
		logger:  logger,
		timeout: timeout,
	}
}

func (s *embeddingService) Generate(ctx context.Context, text string, cfg *embedding.Config) (embedding.Vector, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: embeddings API key not provided", types.ErrProviderUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	pBytes, err := json.Marshal(embeddingRequest{
		Model: model,
		Input: text,
	})
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(openAIEmbeddingsURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	req.SetBody(pBytes)

	if err := s.doRequestWithContext(ctx, req, resp); err != nil {
		metrics.ProviderCallsTotal.WithLabelValues("openai_embeddings", "error").Inc()
		return nil, fmt.Errorf("%w: %v", types.ErrProviderUnavailable, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		metrics.ProviderCallsTotal.WithLabelValues("openai_embeddings", "non_ok").Inc()
		s.logger.WithField("status", resp.StatusCode()).Error("non-OK response from embeddings API")
		return nil, fmt.Errorf("%w: %d", embedding.ErrProviderNonOKResponse, resp.StatusCode())
	}

	var embResp openAIEmbeddingResponse
	if err := json.Unmarshal(resp.Body(), &embResp); err != nil {
		s.logger.WithError(err).Error("failed to decode embeddings response")
		return nil, err
	}

	if len(embResp.Data) == 0 || len(embResp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embeddings from API")
	}

	metrics.ProviderCallsTotal.WithLabelValues("openai_embeddings", "ok").Inc()

	vector := embedding.Vector(embResp.Data[0].Embedding)
	normalizeVector(vector)
	return vector, nil
}

func (s *embeddingService) doRequestWithContext(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.client.DoTimeout(req, resp, s.timeout)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func normalizeVector(v embedding.Vector) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += val * val
	}

	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return
	}

	for i := range v {
		v[i] /= norm
	}
}
