package deception

import (
	"context"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

const CheckerName = "deception"

const baseConfidence = 0.65

// deceptionPatterns match fabricated authority and absolute guarantees a
// language model cannot honestly make.
var deceptionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bas a (?:licensed|certified|board-certified) (?:doctor|physician|lawyer|attorney|accountant|financial advisor)\b`),
	regexp.MustCompile(`(?i)\bi (?:personally )?(?:guarantee|promise) (?:you )?(?:this|that|it)\b`),
	regexp.MustCompile(`(?i)\bthis is 100% (?:legal|safe|accurate|risk-free)\b`),
	regexp.MustCompile(`(?i)\bi have (?:personally )?(?:verified|confirmed|tested) (?:this|these)\b`),
	regexp.MustCompile(`(?i)\btrust me,? i (?:am|'m) (?:a|an) \b`),
	regexp.MustCompile(`(?i)\bno (?:doctor|lawyer|expert) (?:is|will be) (?:needed|necessary)\b`),
	regexp.MustCompile(`(?i)\bcannot (?:possibly )?(?:be wrong|fail)\b`),
}

// Checker flags deceptive framing in model output.
type Checker struct {
	logger *logrus.Logger
}

func NewChecker(logger *logrus.Logger) *Checker {
	return &Checker{logger: logger}
}

func (c *Checker) Name() string {
	return CheckerName
}

func (c *Checker) Analyze(_ context.Context, output string, _ *types.AnalysisContext) (types.DetectionResult, error) {
	if output == "" {
		return types.DetectionResult{}, nil
	}

	var evidence []string
	for _, pattern := range deceptionPatterns {
		if m := pattern.FindString(output); m != "" {
			evidence = append(evidence, m)
		}
	}
	if len(evidence) == 0 {
		return types.DetectionResult{}, nil
	}

	confidence := baseConfidence + 0.1*float64(len(evidence)-1)
	return types.DetectionResult{
		Detected:   true,
		Confidence: types.ClampConfidence(confidence),
		Category:   string(types.FailureDeception),
		Evidence:   evidence,
		Gates:      types.FailureDeception.Gates(),
	}, nil
}
