package structural

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

const DetectorName = "structural"

const (
	defaultTokenWindow = 8
	baseConfidence     = 0.55
	proximityBonus     = 0.15
	pairBonus          = 0.1
)

// Config tunes the co-occurrence window.
type Config struct {
	// TokenWindow is the maximum distance, in tokens, between an action
	// verb and a harm target for the pair to count.
	TokenWindow int `mapstructure:"token_window"`
}

// Detector applies a structural heuristic: an action verb and a harm target
// within a bounded token window. It carries no pattern list of full phrases,
// so it catches phrasings the literal tables miss.
type Detector struct {
	logger *logrus.Logger
	window int
}

func NewDetector(logger *logrus.Logger, settings map[string]interface{}) (*Detector, error) {
	var cfg Config
	if settings != nil {
		if err := mapstructure.Decode(settings, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}
	if cfg.TokenWindow == 0 {
		cfg.TokenWindow = defaultTokenWindow
	}
	if cfg.TokenWindow < 2 {
		return nil, &types.ConfigurationError{Field: "token_window", Reason: "must be at least 2"}
	}
	return &Detector{logger: logger, window: cfg.TokenWindow}, nil
}

func (d *Detector) Name() string {
	return DetectorName
}

func (d *Detector) Analyze(_ context.Context, text string, _ *types.AnalysisContext) (types.DetectionResult, error) {
	if text == "" {
		return types.DetectionResult{}, nil
	}

	tokens := tokenize(text)
	var verbIdx, targetIdx []int
	for i, tok := range tokens {
		if _, ok := actionVerbs[tok]; ok {
			verbIdx = append(verbIdx, i)
		}
		if _, ok := harmTargets[tok]; ok {
			targetIdx = append(targetIdx, i)
		}
	}
	if len(verbIdx) == 0 || len(targetIdx) == 0 {
		return types.DetectionResult{}, nil
	}

	pairs := 0
	closest := d.window + 1
	var evidence []string
	for _, v := range verbIdx {
		for _, t := range targetIdx {
			distance := v - t
			if distance < 0 {
				distance = -distance
			}
			if distance <= d.window {
				pairs++
				if distance < closest {
					closest = distance
				}
				evidence = append(evidence, fmt.Sprintf("%s..%s (distance %d)", tokens[v], tokens[t], distance))
			}
		}
	}
	if pairs == 0 {
		return types.DetectionResult{}, nil
	}

	confidence := baseConfidence + pairBonus*float64(pairs-1)
	if closest <= 2 {
		confidence += proximityBonus
	}
	return types.DetectionResult{
		Detected:   true,
		Confidence: types.ClampConfidence(confidence),
		Category:   string(types.AttackHarmfulRequest),
		Evidence:   evidence,
	}, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
