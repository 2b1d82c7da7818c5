package validator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/config"
	"github.com/sentinel-seed/sentinel/pkg/infra/metrics"
	"github.com/sentinel-seed/sentinel/pkg/types"
)

// ModelCallFunc produces the model response for a validated input. The
// orchestrator never calls it when the first gate blocks.
type ModelCallFunc func(ctx context.Context, input string) (string, error)

// ExchangeObserver judges a full input/output exchange.
type ExchangeObserver interface {
	Observe(ctx context.Context, input, output string) (*types.ObservationResult, error)
}

// SentinelValidator chains the three gates around a model call. Gate 1 runs
// on every transaction, Gate 2 on every response, Gate 3 on a configurable
// sample. A block at any gate ends the transaction; later gates never run
// on blocked content.
type SentinelValidator struct {
	logger   *logrus.Logger
	input    *InputValidator
	output   *OutputValidator
	observer ExchangeObserver
	cfg      config.ValidationConfig
	sample   func() float64
}

func NewSentinelValidator(
	logger *logrus.Logger,
	input *InputValidator,
	output *OutputValidator,
	observer ExchangeObserver,
	cfg config.ValidationConfig,
) *SentinelValidator {
	return &SentinelValidator{
		logger:   logger,
		input:    input,
		output:   output,
		observer: observer,
		cfg:      cfg,
		sample:   rand.Float64,
	}
}

// Process runs one transaction through the pipeline.
func (s *SentinelValidator) Process(ctx context.Context, input string, history []types.Turn, modelFn ModelCallFunc) (*types.SentinelResult, error) {
	start := time.Now()
	result := &types.SentinelResult{
		TraceID: uuid.NewString(),
		Trace:   []string{},
	}
	log := s.logger.WithField("trace_id", result.TraceID)

	gate1, err := s.input.Validate(ctx, input, history)
	if err != nil {
		return nil, fmt.Errorf("input validation: %w", err)
	}
	result.Gate1 = gate1
	if gate1.Blocked {
		result.IsSafe = false
		result.Stage = types.StageBlockedAtInput
		result.Trace = append(result.Trace, fmt.Sprintf("gate1: blocked (score %.2f, %v)", gate1.Confidence, gate1.Violations))
		result.Duration = time.Since(start)
		log.WithField("stage", result.Stage).Info("transaction blocked")
		return result, nil
	}
	result.Trace = append(result.Trace, fmt.Sprintf("gate1: passed (score %.2f)", gate1.Confidence))

	output, err := modelFn(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	gate2, err := s.output.Validate(ctx, output, input, history)
	if err != nil {
		return nil, fmt.Errorf("output validation: %w", err)
	}
	result.Gate2 = gate2
	if gate2.Blocked() {
		result.IsSafe = false
		result.Stage = types.StageBlockedAtOutput
		result.Trace = append(result.Trace, fmt.Sprintf("gate2: blocked (score %.2f, %v)", gate2.Confidence, gate2.Violations))
		result.Duration = time.Since(start)
		log.WithField("stage", result.Stage).Info("transaction blocked")
		return result, nil
	}
	result.Trace = append(result.Trace, fmt.Sprintf("gate2: passed (score %.2f)", gate2.Confidence))

	safe := true
	if s.observer != nil && s.cfg.Gate3SampleRate > 0 && s.sample() < s.cfg.Gate3SampleRate {
		gate3, err := s.observer.Observe(ctx, input, output)
		if err != nil {
			return nil, fmt.Errorf("observation: %w", err)
		}
		result.Gate3 = gate3
		decision := "pass"
		if !gate3.IsSafe {
			decision = "block"
			safe = false
		}
		metrics.GateDecisionsTotal.WithLabelValues("gate3", decision).Inc()
		result.Trace = append(result.Trace, fmt.Sprintf("gate3: %s (%s)", decision, gate3.Reasoning))
	} else {
		result.Trace = append(result.Trace, "gate3: skipped (not sampled)")
	}

	result.IsSafe = safe
	result.Stage = types.StageCompleted
	if safe {
		result.Output = output
	}
	result.Duration = time.Since(start)
	return result, nil
}
