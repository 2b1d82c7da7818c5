package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/config"
	"github.com/sentinel-seed/sentinel/pkg/infra/metrics"
	"github.com/sentinel-seed/sentinel/pkg/normalizer"
	"github.com/sentinel-seed/sentinel/pkg/registry"
	"github.com/sentinel-seed/sentinel/pkg/types"
)

// InputValidator is the first gate. It normalizes the raw text, fans it out
// to the detector registry, and aggregates the results into a block decision.
// Detectors always see the normalized form; the normalization metadata rides
// along in the analysis context so encoding itself can count as a signal.
type InputValidator struct {
	logger     *logrus.Logger
	detectors  *registry.Registry
	normalizer *normalizer.TextNormalizer
	cfg        config.ValidationConfig
}

func NewInputValidator(
	logger *logrus.Logger,
	detectors *registry.Registry,
	norm *normalizer.TextNormalizer,
	cfg config.ValidationConfig,
) *InputValidator {
	return &InputValidator{
		logger:     logger,
		detectors:  detectors,
		normalizer: norm,
		cfg:        cfg,
	}
}

func (v *InputValidator) Validate(ctx context.Context, text string, history []types.Turn) (*types.InputValidationResult, error) {
	start := time.Now()
	defer func() {
		metrics.GateLatency.WithLabelValues("gate1").Observe(time.Since(start).Seconds() * 1000)
	}()

	if len(text) > v.cfg.MaxTextSize {
		return nil, &types.InputSizeError{Size: len(text), Limit: v.cfg.MaxTextSize}
	}
	if text == "" {
		metrics.GateDecisionsTotal.WithLabelValues("gate1", "pass").Inc()
		return &types.InputValidationResult{
			IsSafe:          true,
			Violations:      []string{},
			DetectorResults: []types.ComponentResult{},
			Timestamp:       time.Now().UTC(),
		}, nil
	}

	runCtx, cancel := context.WithTimeout(ctx, v.cfg.ValidationTimeout)
	defer cancel()

	norm := v.normalizer.Normalize(text)
	actx := &types.AnalysisContext{
		OriginalText:  text,
		History:       history,
		Normalization: &norm,
	}
	results := v.detectors.RunAll(runCtx, norm.Normalized, actx)

	if allFailed(results) {
		return v.resolveOutage(results, norm)
	}

	score, violations := aggregateScore(results, v.cfg.CorroborationBoost)
	blocked := score >= v.cfg.BlockThreshold

	decision := "pass"
	if blocked {
		decision = "block"
		v.logger.WithFields(logrus.Fields{
			"score":      score,
			"violations": violations,
		}).Info("input blocked")
	}
	metrics.GateDecisionsTotal.WithLabelValues("gate1", decision).Inc()

	return &types.InputValidationResult{
		IsSafe:          !blocked,
		Blocked:         blocked,
		Confidence:      score,
		Violations:      violations,
		DetectorResults: results,
		Normalization:   norm,
		Timestamp:       time.Now().UTC(),
	}, nil
}

// resolveOutage applies the fail mode when every detector errored. A single
// failing detector is isolated by the registry; this path only triggers when
// the whole gate produced no verdict at all.
func (v *InputValidator) resolveOutage(results []types.ComponentResult, norm types.NormalizationResult) (*types.InputValidationResult, error) {
	switch v.cfg.FailMode {
	case config.FailRaise:
		return nil, fmt.Errorf("all detectors failed: %w", types.ErrProviderUnavailable)
	case config.FailOpen:
		metrics.GateDecisionsTotal.WithLabelValues("gate1", "pass").Inc()
		return &types.InputValidationResult{
			IsSafe:          true,
			Violations:      []string{},
			DetectorResults: results,
			Normalization:   norm,
			Timestamp:       time.Now().UTC(),
		}, nil
	default:
		metrics.GateDecisionsTotal.WithLabelValues("gate1", "block").Inc()
		return &types.InputValidationResult{
			IsSafe:          false,
			Blocked:         true,
			Confidence:      1,
			Violations:      []string{"detector_outage"},
			DetectorResults: results,
			Normalization:   norm,
			Timestamp:       time.Now().UTC(),
		}, nil
	}
}
