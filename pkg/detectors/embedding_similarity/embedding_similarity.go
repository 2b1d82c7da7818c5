package embedding_similarity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/domain/embedding"
	"github.com/sentinel-seed/sentinel/pkg/infra/httpx"
	"github.com/sentinel-seed/sentinel/pkg/types"
)

const DetectorName = "embedding_similarity"

const (
	defaultThreshold = 0.82
	defaultTimeout   = 10 * time.Second
	breakerFailures  = 5
)

// Config tunes the similarity detector.
type Config struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	APIKey    string        `mapstructure:"api_key"`
	Threshold float64       `mapstructure:"threshold"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Detector compares incoming text against curated exemplar vectors by
// cosine similarity. It is the only detector permitted to call an external
// embedding provider; when the provider is unavailable it degrades to no
// signal instead of blocking the pipeline.
type Detector struct {
	logger    *logrus.Logger
	creator   embedding.Creator
	breaker   httpx.CircuitBreaker
	cfg       Config
	exemplars []Exemplar

	mu      sync.Mutex
	vectors []embedding.Vector
}

func NewDetector(logger *logrus.Logger, creator embedding.Creator, settings map[string]interface{}) (*Detector, error) {
	var cfg Config
	if settings != nil {
		if err := mapstructure.Decode(settings, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = defaultThreshold
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return nil, &types.ConfigurationError{Field: "threshold", Reason: "must be in (0,1]"}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Detector{
		logger:    logger,
		creator:   creator,
		breaker:   httpx.NewCircuitBreaker(DetectorName, cfg.Timeout, breakerFailures),
		cfg:       cfg,
		exemplars: defaultExemplars,
	}, nil
}

// SetExemplars replaces the curated exemplar set, dropping any cached
// vectors. Exemplars with a precomputed vector skip the provider entirely.
func (d *Detector) SetExemplars(exemplars []Exemplar, vectors []embedding.Vector) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exemplars = exemplars
	d.vectors = vectors
}

func (d *Detector) Name() string {
	return DetectorName
}

func (d *Detector) Analyze(ctx context.Context, text string, _ *types.AnalysisContext) (types.DetectionResult, error) {
	if text == "" {
		return types.DetectionResult{}, nil
	}
	if d.creator == nil {
		return types.DetectionResult{}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	vectors, err := d.exemplarVectors(callCtx)
	if err != nil {
		return types.DetectionResult{}, fmt.Errorf("%w: %v", types.ErrProviderUnavailable, err)
	}

	current, err := d.generate(callCtx, text)
	if err != nil {
		return types.DetectionResult{}, fmt.Errorf("%w: %v", types.ErrProviderUnavailable, err)
	}

	bestSim := 0.0
	bestIdx := -1
	for i, v := range vectors {
		if sim := embedding.Cosine(current, v); sim > bestSim {
			bestSim = sim
			bestIdx = i
		}
	}
	if bestIdx < 0 || bestSim < d.cfg.Threshold {
		return types.DetectionResult{}, nil
	}

	exemplar := d.exemplars[bestIdx]
	return types.DetectionResult{
		Detected:   true,
		Confidence: types.ClampConfidence(bestSim),
		Category:   string(exemplar.Category),
		Evidence:   []string{fmt.Sprintf("similar to %q (cosine %.2f)", exemplar.Text, bestSim)},
	}, nil
}

func (d *Detector) generate(ctx context.Context, text string) (embedding.Vector, error) {
	var vector embedding.Vector
	err := d.breaker.Execute(func() error {
		var genErr error
		vector, genErr = d.creator.Generate(ctx, text, &embedding.Config{
			Model:  d.cfg.Model,
			APIKey: d.cfg.APIKey,
		})
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// exemplarVectors embeds the exemplar set on first use and caches the
// result for the detector's lifetime.
func (d *Detector) exemplarVectors(ctx context.Context) ([]embedding.Vector, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.vectors) == len(d.exemplars) && len(d.vectors) > 0 {
		return d.vectors, nil
	}

	vectors := make([]embedding.Vector, 0, len(d.exemplars))
	for _, ex := range d.exemplars {
		v, err := d.generate(ctx, ex.Text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	d.vectors = vectors
	return vectors, nil
}
