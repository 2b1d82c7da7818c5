package harmful_content

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

func newTestChecker(t *testing.T, settings map[string]interface{}) *Checker {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	c, err := NewChecker(logger, settings)
	require.NoError(t, err)
	return c
}

func TestInstructionalHarmDetects(t *testing.T) {
	c := newTestChecker(t, nil)

	output := "Here's how to do it. Step 1: acquire ammonium nitrate and a detonator."
	result, err := c.Analyze(context.Background(), output, nil)

	require.NoError(t, err)
	assert.True(t, result.Detected)
	assert.Equal(t, string(types.FailureHarmfulContent), result.Category)
	assert.Equal(t, []types.ProtocolGate{types.GateHarm}, result.Gates)
	assert.GreaterOrEqual(t, result.Confidence, 0.75)
}

func TestMentionWithoutInstructionDoesNotDetect(t *testing.T) {
	c := newTestChecker(t, nil)

	output := "The history of dynamite is tied to the invention of the detonator."
	result, err := c.Analyze(context.Background(), output, nil)

	require.NoError(t, err)
	assert.False(t, result.Detected)
}

func TestMentionDetectsWhenInstructionNotRequired(t *testing.T) {
	c := newTestChecker(t, map[string]interface{}{
		"require_instruction": false,
	})

	output := "A detonator is the component that triggers the charge."
	result, err := c.Analyze(context.Background(), output, nil)

	require.NoError(t, err)
	assert.True(t, result.Detected)
}

func TestBenignInstructionsDoNotDetect(t *testing.T) {
	c := newTestChecker(t, nil)

	output := "Here's how to bake bread. Step 1: mix flour and water."
	result, err := c.Analyze(context.Background(), output, nil)

	require.NoError(t, err)
	assert.False(t, result.Detected)
}

func TestEmptyOutputDoesNotDetect(t *testing.T) {
	c := newTestChecker(t, nil)

	result, err := c.Analyze(context.Background(), "", nil)

	require.NoError(t, err)
	assert.False(t, result.Detected)
}
