package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/config"
	"github.com/sentinel-seed/sentinel/pkg/infra/metrics"
	"github.com/sentinel-seed/sentinel/pkg/registry"
	"github.com/sentinel-seed/sentinel/pkg/types"
)

// OutputValidator is the second gate. It runs the checker registry against a
// model response, with the original user input available through the
// analysis context so checkers can compare request against response.
type OutputValidator struct {
	logger   *logrus.Logger
	checkers *registry.Registry
	cfg      config.ValidationConfig
}

func NewOutputValidator(
	logger *logrus.Logger,
	checkers *registry.Registry,
	cfg config.ValidationConfig,
) *OutputValidator {
	return &OutputValidator{
		logger:   logger,
		checkers: checkers,
		cfg:      cfg,
	}
}

func (v *OutputValidator) Validate(ctx context.Context, output, originalInput string, history []types.Turn) (*types.OutputValidationResult, error) {
	start := time.Now()
	defer func() {
		metrics.GateLatency.WithLabelValues("gate2").Observe(time.Since(start).Seconds() * 1000)
	}()

	if len(output) > v.cfg.MaxTextSize {
		return nil, &types.InputSizeError{Size: len(output), Limit: v.cfg.MaxTextSize}
	}
	if output == "" {
		metrics.GateDecisionsTotal.WithLabelValues("gate2", "pass").Inc()
		return &types.OutputValidationResult{
			IsSafe:         true,
			Violations:     []string{},
			CheckerResults: []types.ComponentResult{},
			Timestamp:      time.Now().UTC(),
		}, nil
	}

	runCtx, cancel := context.WithTimeout(ctx, v.cfg.ValidationTimeout)
	defer cancel()

	actx := &types.AnalysisContext{
		OriginalText: originalInput,
		History:      history,
	}
	results := v.checkers.RunAll(runCtx, output, actx)

	if allFailed(results) {
		return v.resolveOutage(results)
	}

	score, violations := aggregateScore(results, v.cfg.CorroborationBoost)
	seedFailed := score >= v.cfg.BlockThreshold

	decision := "pass"
	if seedFailed {
		decision = "block"
		v.logger.WithFields(logrus.Fields{
			"score":      score,
			"violations": violations,
		}).Info("output blocked")
	}
	metrics.GateDecisionsTotal.WithLabelValues("gate2", decision).Inc()

	return &types.OutputValidationResult{
		IsSafe:         !seedFailed,
		SeedFailed:     seedFailed,
		Confidence:     score,
		Violations:     violations,
		FailedGates:    failedGates(results),
		CheckerResults: results,
		Timestamp:      time.Now().UTC(),
	}, nil
}

func (v *OutputValidator) resolveOutage(results []types.ComponentResult) (*types.OutputValidationResult, error) {
	switch v.cfg.FailMode {
	case config.FailRaise:
		return nil, fmt.Errorf("all checkers failed: %w", types.ErrProviderUnavailable)
	case config.FailOpen:
		metrics.GateDecisionsTotal.WithLabelValues("gate2", "pass").Inc()
		return &types.OutputValidationResult{
			IsSafe:         true,
			Violations:     []string{},
			CheckerResults: results,
			Timestamp:      time.Now().UTC(),
		}, nil
	default:
		metrics.GateDecisionsTotal.WithLabelValues("gate2", "block").Inc()
		return &types.OutputValidationResult{
			IsSafe:         false,
			SeedFailed:     true,
			Confidence:     1,
			Violations:     []string{"checker_outage"},
			CheckerResults: results,
			Timestamp:      time.Now().UTC(),
		}, nil
	}
}
