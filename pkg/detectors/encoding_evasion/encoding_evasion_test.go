package encoding_evasion

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

func newTestDetector(t *testing.T, settings map[string]interface{}) *Detector {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	d, err := NewDetector(logger, settings)
	require.NoError(t, err)
	return d
}

func normalizationWith(techniques ...types.ObfuscationTechnique) *types.NormalizationResult {
	confidence := make(map[types.ObfuscationTechnique]float64, len(techniques))
	for _, technique := range techniques {
		confidence[technique] = 0.9
	}
	return &types.NormalizationResult{
		Original:     "original",
		Normalized:   "normalized",
		IsObfuscated: len(techniques) > 0,
		Techniques:   techniques,
		Confidence:   confidence,
	}
}

func TestNoNormalizationMetadataNoSignal(t *testing.T) {
	d := newTestDetector(t, nil)

	result, err := d.Analyze(context.Background(), "text", nil)
	require.NoError(t, err)
	assert.False(t, result.Detected)

	result, err = d.Analyze(context.Background(), "text", &types.AnalysisContext{})
	require.NoError(t, err)
	assert.False(t, result.Detected)
}

func TestCleanTextNoSignal(t *testing.T) {
	d := newTestDetector(t, nil)

	actx := &types.AnalysisContext{Normalization: normalizationWith()}
	result, err := d.Analyze(context.Background(), "text", actx)

	require.NoError(t, err)
	assert.False(t, result.Detected)
}

func TestBase64FiresStrongly(t *testing.T) {
	d := newTestDetector(t, nil)

	actx := &types.AnalysisContext{Normalization: normalizationWith(types.ObfuscationBase64)}
	result, err := d.Analyze(context.Background(), "decoded text", actx)

	require.NoError(t, err)
	assert.True(t, result.Detected)
	assert.Equal(t, string(types.AttackObfuscation), result.Category)
	assert.InDelta(t, 0.85, result.Confidence, 1e-9)
}

func TestStackedTechniquesRaiseConfidence(t *testing.T) {
	d := newTestDetector(t, nil)

	single := &types.AnalysisContext{Normalization: normalizationWith(types.ObfuscationBase64)}
	stacked := &types.AnalysisContext{Normalization: normalizationWith(
		types.ObfuscationBase64, types.ObfuscationLeetspeak,
	)}

	one, err := d.Analyze(context.Background(), "decoded text", single)
	require.NoError(t, err)
	two, err := d.Analyze(context.Background(), "decoded text", stacked)
	require.NoError(t, err)

	assert.Greater(t, two.Confidence, one.Confidence)
}

func TestMinTechniquesThreshold(t *testing.T) {
	d := newTestDetector(t, map[string]interface{}{"min_techniques": 2})

	actx := &types.AnalysisContext{Normalization: normalizationWith(types.ObfuscationBase64)}
	result, err := d.Analyze(context.Background(), "decoded text", actx)

	require.NoError(t, err)
	assert.False(t, result.Detected)
}
