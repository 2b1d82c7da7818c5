package refusal_bypass

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

const CheckerName = "refusal_bypass"

// baseConfidence is deliberately moderate. Absence of a refusal is weaker
// evidence than the presence of harmful content, so this checker relies on
// corroboration from the content checkers to cross the block threshold.
const baseConfidence = 0.6

// minSubstantiveLength filters out one-line responses. A short answer to a
// harmful request is usually a deflection rather than compliance.
const minSubstantiveLength = 120

// Checker compares the original request against the response. When the
// request matched a harmful pattern and the response neither refuses nor
// stays short, the model likely complied without tripping content checks.
type Checker struct {
	logger *logrus.Logger
}

func NewChecker(logger *logrus.Logger) *Checker {
	return &Checker{logger: logger}
}

func (c *Checker) Name() string {
	return CheckerName
}

func (c *Checker) Analyze(_ context.Context, output string, actx *types.AnalysisContext) (types.DetectionResult, error) {
	if output == "" || actx == nil || actx.OriginalText == "" {
		return types.DetectionResult{}, nil
	}

	var requestHits []string
	for _, pattern := range harmfulRequestPatterns {
		if m := pattern.FindString(actx.OriginalText); m != "" {
			requestHits = append(requestHits, m)
		}
	}
	if len(requestHits) == 0 {
		return types.DetectionResult{}, nil
	}

	for _, marker := range refusalMarkers {
		if marker.MatchString(output) {
			return types.DetectionResult{}, nil
		}
	}
	if len(output) < minSubstantiveLength {
		return types.DetectionResult{}, nil
	}

	evidence := make([]string, 0, len(requestHits))
	for _, hit := range requestHits {
		evidence = append(evidence, fmt.Sprintf("no refusal to: %q", hit))
	}
	return types.DetectionResult{
		Detected:   true,
		Confidence: baseConfidence,
		Category:   string(types.FailureRefusalBypass),
		Evidence:   evidence,
		Gates:      types.FailureRefusalBypass.Gates(),
	}, nil
}
