package pattern_attack

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

const DetectorName = "pattern_attack"

const matchIncrement = 0.04

// Config tunes the pattern detector. Custom patterns extend the predefined
// tables without replacing them.
type Config struct {
	DisabledCategories []string `mapstructure:"disabled_categories"`
	CustomPatterns     []struct {
		Category string `mapstructure:"category"`
		Pattern  string `mapstructure:"pattern"`
	} `mapstructure:"custom_patterns"`
}

// Detector matches literal keyword/regex tables against normalized input.
type Detector struct {
	logger   *logrus.Logger
	patterns map[types.AttackType][]*regexp.Regexp
}

func NewDetector(logger *logrus.Logger, settings map[string]interface{}) (*Detector, error) {
	var cfg Config
	if settings != nil {
		if err := mapstructure.Decode(settings, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	disabled := make(map[types.AttackType]bool, len(cfg.DisabledCategories))
	for _, c := range cfg.DisabledCategories {
		disabled[types.AttackType(strings.ToLower(c))] = true
	}

	patterns := make(map[types.AttackType][]*regexp.Regexp, len(attackPatterns))
	for category, list := range attackPatterns {
		if disabled[category] {
			continue
		}
		patterns[category] = list
	}
	for _, custom := range cfg.CustomPatterns {
		if custom.Pattern == "" {
			return nil, &types.ConfigurationError{Field: "custom_patterns", Reason: "pattern cannot be empty"}
		}
		compiled, err := regexp.Compile(custom.Pattern)
		if err != nil {
			return nil, &types.ConfigurationError{Field: "custom_patterns", Reason: fmt.Sprintf("invalid pattern %q: %v", custom.Pattern, err)}
		}
		category := types.AttackType(strings.ToLower(custom.Category))
		patterns[category] = append(patterns[category], compiled)
	}

	return &Detector{logger: logger, patterns: patterns}, nil
}

func (d *Detector) Name() string {
	return DetectorName
}

func (d *Detector) Analyze(_ context.Context, text string, _ *types.AnalysisContext) (types.DetectionResult, error) {
	if text == "" {
		return types.DetectionResult{}, nil
	}

	var (
		best         types.AttackType
		bestScore    float64
		bestEvidence []string
	)
	for category, list := range d.patterns {
		matches := 0
		var evidence []string
		for _, pattern := range list {
			if m := pattern.FindString(text); m != "" {
				matches++
				evidence = append(evidence, truncate(m, 80))
			}
		}
		if matches == 0 {
			continue
		}
		base, ok := categoryConfidence[category]
		if !ok {
			base = 0.7
		}
		score := types.ClampConfidence(base + matchIncrement*float64(matches-1))
		// Severity breaks ties between categories that fired together.
		if score > bestScore || (score == bestScore && category.Severity() > best.Severity()) {
			best = category
			bestScore = score
			bestEvidence = evidence
		}
	}

	if bestScore == 0 {
		return types.DetectionResult{}, nil
	}
	return types.DetectionResult{
		Detected:   true,
		Confidence: bestScore,
		Category:   string(best),
		Evidence:   bestEvidence,
	}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
