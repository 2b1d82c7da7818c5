package normalizer

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

const (
	defaultMinEncodedLength = 16
	defaultMinDecodeQuality = 0.9
)

// Config toggles and tunes the normalization passes. All passes run by
// default; list a pass in DisabledPasses by its technique name to skip it.
type Config struct {
	DisabledPasses []string `mapstructure:"disabled_passes"`
	// MinEncodedLength is the minimum run length considered for Base64 and
	// hex decoding. Shorter runs are too likely to be ordinary text.
	MinEncodedLength int `mapstructure:"min_encoded_length"`
	// MinDecodeQuality is the printable-rune ratio a decode must reach to
	// replace the original run.
	MinDecodeQuality float64 `mapstructure:"min_decode_quality"`
}

// TextNormalizer de-obfuscates text before any detector examines it. Passes
// run in a fixed order; a pass that cannot produce a printable decode leaves
// the text unchanged. Normalize is idempotent.
type TextNormalizer struct {
	cfg      Config
	disabled map[string]bool
	logger   *logrus.Logger
}

func NewTextNormalizer(logger *logrus.Logger, cfg Config) (*TextNormalizer, error) {
	if cfg.MinEncodedLength == 0 {
		cfg.MinEncodedLength = defaultMinEncodedLength
	}
	if cfg.MinDecodeQuality == 0 {
		cfg.MinDecodeQuality = defaultMinDecodeQuality
	}
	if cfg.MinEncodedLength < 8 {
		return nil, &types.ConfigurationError{Field: "min_encoded_length", Reason: "must be at least 8"}
	}
	if cfg.MinDecodeQuality <= 0 || cfg.MinDecodeQuality > 1 {
		return nil, &types.ConfigurationError{Field: "min_decode_quality", Reason: "must be in (0,1]"}
	}
	disabled := make(map[string]bool, len(cfg.DisabledPasses))
	for _, name := range cfg.DisabledPasses {
		disabled[strings.ToLower(name)] = true
	}
	return &TextNormalizer{cfg: cfg, disabled: disabled, logger: logger}, nil
}

type pass struct {
	technique types.ObfuscationTechnique
	apply     func(string) (string, float64)
	// threshold is the per-pass confidence a firing must exceed to count
	// toward is_obfuscated.
	threshold float64
}

func (n *TextNormalizer) passes() []pass {
	return []pass{
		{types.ObfuscationInvisible, n.stripInvisible, 0.2},
		{types.ObfuscationConfusable, n.foldConfusables, 0.2},
		{types.ObfuscationBase64, n.decodeBase64Runs, 0.5},
		{types.ObfuscationHex, n.decodeHexRuns, 0.5},
		{types.ObfuscationRotation, n.reverseRotation, 0.5},
		{types.ObfuscationLeetspeak, n.foldLeetspeak, 0.3},
		{types.ObfuscationSpacing, n.collapseFragmentation, 0.3},
	}
}

// Normalize runs every enabled pass in order and reports which techniques
// fired. The original text is always retained alongside the normalized text.
func (n *TextNormalizer) Normalize(text string) types.NormalizationResult {
	result := types.NormalizationResult{
		Original:   text,
		Normalized: text,
		Confidence: map[types.ObfuscationTechnique]float64{},
	}
	if text == "" {
		return result
	}

	current := text
	for _, p := range n.passes() {
		if n.disabled[string(p.technique)] {
			continue
		}
		next, confidence := p.apply(current)
		confidence = types.ClampConfidence(confidence)
		if confidence > p.threshold && next != current {
			result.Techniques = append(result.Techniques, p.technique)
			result.Confidence[p.technique] = confidence
			result.IsObfuscated = true
			if n.logger != nil {
				n.logger.WithFields(logrus.Fields{
					"technique":  p.technique,
					"confidence": confidence,
				}).Debug("normalization pass fired")
			}
			current = next
		}
	}

	result.Normalized = current
	return result
}
