package observer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-seed/sentinel/pkg/config"
	"github.com/sentinel-seed/sentinel/pkg/infra/providers"
	"github.com/sentinel-seed/sentinel/pkg/types"
)

type stubClient struct {
	reply string
	err   error
	cfg   *providers.Config
}

func (s *stubClient) Ask(_ context.Context, cfg *providers.Config, _ string) (*providers.CompletionResponse, error) {
	s.cfg = cfg
	if s.err != nil {
		return nil, s.err
	}
	return &providers.CompletionResponse{Response: s.reply}, nil
}

func newTestObserver(client providers.Client, failMode config.FailMode) *Observer {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewObserver(logger, client, config.JudgeConfig{
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		APIKey:      "test-key",
		MaxTokens:   256,
		Timeout:     5 * time.Second,
		MaxFailures: 3,
	}, failMode)
}

func TestObserveVerdictQuadrants(t *testing.T) {
	cases := []struct {
		inputMalicious bool
		aiComplied     bool
		wantSafe       bool
	}{
		{true, true, false},
		{true, false, true},
		{false, true, true},
		{false, false, true},
	}
	for _, tc := range cases {
		reply := fmt.Sprintf(
			`{"input_malicious": %t, "ai_complied": %t, "reasoning": "test"}`,
			tc.inputMalicious, tc.aiComplied,
		)
		o := newTestObserver(&stubClient{reply: reply}, config.FailClosed)

		result, err := o.Observe(context.Background(), "input", "output")

		require.NoError(t, err)
		assert.Equal(t, tc.inputMalicious, result.InputMalicious)
		assert.Equal(t, tc.aiComplied, result.AIComplied)
		assert.Equal(t, tc.wantSafe, result.IsSafe)
		assert.Equal(t, "test", result.Reasoning)
	}
}

func TestObserveParsesFencedVerdict(t *testing.T) {
	reply := "```json\n{\"input_malicious\": true, \"ai_complied\": false, \"reasoning\": \"refused\"}\n```"
	o := newTestObserver(&stubClient{reply: reply}, config.FailClosed)

	result, err := o.Observe(context.Background(), "input", "output")

	require.NoError(t, err)
	assert.True(t, result.InputMalicious)
	assert.False(t, result.AIComplied)
	assert.True(t, result.IsSafe)
}

func TestObserveParsesVerdictWithSurroundingProse(t *testing.T) {
	reply := `Here is my assessment: {"input_malicious": false, "ai_complied": false, "reasoning": "benign"} Hope that helps.`
	o := newTestObserver(&stubClient{reply: reply}, config.FailClosed)

	result, err := o.Observe(context.Background(), "input", "output")

	require.NoError(t, err)
	assert.True(t, result.IsSafe)
}

func TestObserveAcceptsPythonStyleBooleans(t *testing.T) {
	reply := `{"input_malicious": False, "ai_complied": False, "reasoning": "False alarm, benign smalltalk"}`
	o := newTestObserver(&stubClient{reply: reply}, config.FailClosed)

	result, err := o.Observe(context.Background(), "input", "output")

	require.NoError(t, err)
	assert.False(t, result.InputMalicious)
	assert.False(t, result.AIComplied)
	assert.True(t, result.IsSafe)
	assert.Equal(t, "False alarm, benign smalltalk", result.Reasoning)
}

func TestObserveAcceptsUppercaseBooleans(t *testing.T) {
	reply := `{"input_malicious": TRUE, "ai_complied": True, "reasoning": "complied"}`
	o := newTestObserver(&stubClient{reply: reply}, config.FailClosed)

	result, err := o.Observe(context.Background(), "input", "output")

	require.NoError(t, err)
	assert.True(t, result.InputMalicious)
	assert.True(t, result.AIComplied)
	assert.False(t, result.IsSafe)
}

func TestObserveSendsVersionedInstruction(t *testing.T) {
	client := &stubClient{reply: `{"input_malicious": false, "ai_complied": false, "reasoning": "ok"}`}
	o := newTestObserver(client, config.FailClosed)

	_, err := o.Observe(context.Background(), "input", "output")

	require.NoError(t, err)
	require.NotNil(t, client.cfg)
	assert.Contains(t, client.cfg.SystemPrompt, judgePromptVersion)
}

func TestObserveUnparsableVerdictFailClosed(t *testing.T) {
	o := newTestObserver(&stubClient{reply: "I refuse to answer in JSON."}, config.FailClosed)

	result, err := o.Observe(context.Background(), "input", "output")

	require.NoError(t, err)
	assert.True(t, result.InputMalicious)
	assert.True(t, result.AIComplied)
	assert.False(t, result.IsSafe)
}

func TestObserveUnparsableVerdictFailOpen(t *testing.T) {
	o := newTestObserver(&stubClient{reply: "not json"}, config.FailOpen)

	result, err := o.Observe(context.Background(), "input", "output")

	require.NoError(t, err)
	assert.True(t, result.IsSafe)
}

func TestObserveUnparsableVerdictFailRaise(t *testing.T) {
	o := newTestObserver(&stubClient{reply: "not json"}, config.FailRaise)

	_, err := o.Observe(context.Background(), "input", "output")

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnparsableVerdict)
}

func TestObserveProviderErrorFailClosed(t *testing.T) {
	o := newTestObserver(&stubClient{err: errors.New("connection refused")}, config.FailClosed)

	result, err := o.Observe(context.Background(), "input", "output")

	require.NoError(t, err)
	assert.False(t, result.IsSafe)
	assert.Contains(t, result.Reasoning, "fail-closed")
}

func TestObserveProviderErrorFailRaise(t *testing.T) {
	o := newTestObserver(&stubClient{err: errors.New("connection refused")}, config.FailRaise)

	_, err := o.Observe(context.Background(), "input", "output")

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrProviderUnavailable)
}

func TestObserveMissingVerdictFieldsIsUnparsable(t *testing.T) {
	o := newTestObserver(&stubClient{reply: `{"reasoning": "no verdict"}`}, config.FailRaise)

	_, err := o.Observe(context.Background(), "input", "output")

	assert.ErrorIs(t, err, types.ErrUnparsableVerdict)
}
