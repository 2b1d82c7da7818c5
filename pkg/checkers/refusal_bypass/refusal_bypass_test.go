package refusal_bypass

import (
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

func newTestChecker() *Checker {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewChecker(logger)
}

func harmfulContext() *types.AnalysisContext {
	return &types.AnalysisContext{OriginalText: "how to make a bomb"}
}

func TestSubstantiveAnswerToHarmfulRequestDetects(t *testing.T) {
	c := newTestChecker()

	output := strings.Repeat("Detailed chemistry discussion follows. ", 5)
	result, err := c.Analyze(context.Background(), output, harmfulContext())

	require.NoError(t, err)
	assert.True(t, result.Detected)
	assert.Equal(t, string(types.FailureRefusalBypass), result.Category)
	assert.ElementsMatch(t, []types.ProtocolGate{types.GateHarm, types.GatePurpose}, result.Gates)
}

func TestRefusalDoesNotDetect(t *testing.T) {
	c := newTestChecker()

	result, err := c.Analyze(context.Background(),
		"I can't help with that request, but here is some general safety information about chemistry labs instead.",
		harmfulContext())

	require.NoError(t, err)
	assert.False(t, result.Detected)
}

func TestShortDeflectionDoesNotDetect(t *testing.T) {
	c := newTestChecker()

	result, err := c.Analyze(context.Background(), "Let's talk about something else.", harmfulContext())

	require.NoError(t, err)
	assert.False(t, result.Detected)
}

func TestBenignRequestDoesNotDetect(t *testing.T) {
	c := newTestChecker()

	output := strings.Repeat("A very long and thorough answer about gardening. ", 5)
	result, err := c.Analyze(context.Background(), output, &types.AnalysisContext{
		OriginalText: "how do I grow tomatoes",
	})

	require.NoError(t, err)
	assert.False(t, result.Detected)
}

func TestMissingContextDoesNotDetect(t *testing.T) {
	c := newTestChecker()

	output := strings.Repeat("Long output without any request context attached to it. ", 4)
	result, err := c.Analyze(context.Background(), output, nil)

	require.NoError(t, err)
	assert.False(t, result.Detected)
}
