package encoding_evasion

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

const DetectorName = "encoding_evasion"

// strongTechniques are the passes whose firing means the sender actively
// encoded the request. Wrapping a prompt in Base64 or a cipher is itself a
// signal, independent of what the decoded text says.
var strongTechniques = map[types.ObfuscationTechnique]float64{
	types.ObfuscationBase64:    0.85,
	types.ObfuscationHex:       0.85,
	types.ObfuscationRotation:  0.8,
	types.ObfuscationLeetspeak: 0.55,
	types.ObfuscationInvisible: 0.6,
	types.ObfuscationSpacing:   0.5,
}

type Config struct {
	// MinTechniques is how many passes must fire before the detector does.
	MinTechniques int `mapstructure:"min_techniques"`
}

// Detector flags inputs the normalizer had to de-obfuscate. It reads the
// normalization metadata from the analysis context and never re-normalizes.
type Detector struct {
	logger        *logrus.Logger
	minTechniques int
}

func NewDetector(logger *logrus.Logger, settings map[string]interface{}) (*Detector, error) {
	var cfg Config
	if settings != nil {
		if err := mapstructure.Decode(settings, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}
	if cfg.MinTechniques == 0 {
		cfg.MinTechniques = 1
	}
	if cfg.MinTechniques < 1 {
		return nil, &types.ConfigurationError{Field: "min_techniques", Reason: "must be at least 1"}
	}
	return &Detector{logger: logger, minTechniques: cfg.MinTechniques}, nil
}

func (d *Detector) Name() string {
	return DetectorName
}

func (d *Detector) Analyze(_ context.Context, text string, actx *types.AnalysisContext) (types.DetectionResult, error) {
	if text == "" || actx == nil || actx.Normalization == nil {
		return types.DetectionResult{}, nil
	}
	norm := actx.Normalization
	if !norm.IsObfuscated || len(norm.Techniques) < d.minTechniques {
		return types.DetectionResult{}, nil
	}

	confidence := 0.0
	var evidence []string
	for _, technique := range norm.Techniques {
		weight, ok := strongTechniques[technique]
		if !ok {
			continue
		}
		if weight > confidence {
			confidence = weight
		}
		evidence = append(evidence, fmt.Sprintf("%s (confidence %.2f)", technique, norm.Confidence[technique]))
	}
	if confidence == 0 {
		return types.DetectionResult{}, nil
	}
	// Stacked techniques raise confidence: layering encodings is rarely
	// accidental.
	if len(evidence) > 1 {
		confidence += 0.1 * float64(len(evidence)-1)
	}

	return types.DetectionResult{
		Detected:   true,
		Confidence: types.ClampConfidence(confidence),
		Category:   string(types.AttackObfuscation),
		Evidence:   evidence,
	}, nil
}
