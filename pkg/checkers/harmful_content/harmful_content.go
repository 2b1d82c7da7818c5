package harmful_content

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

const CheckerName = "harmful_content"

const (
	baseConfidence = 0.75
	lexiconBonus   = 0.05
)

type Config struct {
	// RequireInstruction demands an instructional marker besides the harm
	// lexicon hit. Disabling it flags any harm-lexicon mention.
	RequireInstruction *bool `mapstructure:"require_instruction"`
}

// Checker flags model output that provides operational harmful content:
// instructional framing combined with a harm subject.
type Checker struct {
	logger             *logrus.Logger
	requireInstruction bool
}

func NewChecker(logger *logrus.Logger, settings map[string]interface{}) (*Checker, error) {
	var cfg Config
	if settings != nil {
		if err := mapstructure.Decode(settings, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}
	requireInstruction := true
	if cfg.RequireInstruction != nil {
		requireInstruction = *cfg.RequireInstruction
	}
	return &Checker{logger: logger, requireInstruction: requireInstruction}, nil
}

func (c *Checker) Name() string {
	return CheckerName
}

func (c *Checker) Analyze(_ context.Context, output string, _ *types.AnalysisContext) (types.DetectionResult, error) {
	if output == "" {
		return types.DetectionResult{}, nil
	}

	var lexiconHits []string
	for _, pattern := range harmLexicon {
		if m := pattern.FindString(output); m != "" {
			lexiconHits = append(lexiconHits, m)
		}
	}
	if len(lexiconHits) == 0 {
		return types.DetectionResult{}, nil
	}

	var instructionHits []string
	for _, pattern := range instructionPatterns {
		if m := pattern.FindString(output); m != "" {
			instructionHits = append(instructionHits, m)
		}
	}
	if c.requireInstruction && len(instructionHits) == 0 {
		return types.DetectionResult{}, nil
	}

	confidence := baseConfidence + lexiconBonus*float64(len(lexiconHits)-1+len(instructionHits))
	evidence := append(instructionHits, lexiconHits...)
	return types.DetectionResult{
		Detected:   true,
		Confidence: types.ClampConfidence(confidence),
		Category:   string(types.FailureHarmfulContent),
		Evidence:   evidence,
		Gates:      types.FailureHarmfulContent.Gates(),
	}, nil
}
