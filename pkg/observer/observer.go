package observer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"

	"github.com/sentinel-seed/sentinel/pkg/config"
	"github.com/sentinel-seed/sentinel/pkg/infra/httpx"
	"github.com/sentinel-seed/sentinel/pkg/infra/metrics"
	"github.com/sentinel-seed/sentinel/pkg/infra/providers"
	"github.com/sentinel-seed/sentinel/pkg/types"
)

const ObserverName = "sentinel_observer"

// Observer is the third gate. It sends the full exchange to an independent
// judge model and reduces the verdict to two booleans. The judge is never
// the model under test.
type Observer struct {
	logger      *logrus.Logger
	client      providers.Client
	providerCfg *providers.Config
	provider    string
	breaker     httpx.CircuitBreaker
	failMode    config.FailMode
	timeout     time.Duration
}

func NewObserver(
	logger *logrus.Logger,
	client providers.Client,
	judgeCfg config.JudgeConfig,
	failMode config.FailMode,
) *Observer {
	return &Observer{
		logger: logger,
		client: client,
		providerCfg: &providers.Config{
			Credentials:  providers.Credentials{ApiKey: judgeCfg.APIKey},
			Model:        judgeCfg.Model,
			MaxTokens:    judgeCfg.MaxTokens,
			Temperature:  0,
			SystemPrompt: judgeSystemPrompt,
		},
		provider: judgeCfg.Provider,
		breaker:  httpx.NewCircuitBreaker(ObserverName, judgeCfg.Timeout, judgeCfg.MaxFailures),
		failMode: failMode,
		timeout:  judgeCfg.Timeout,
	}
}

// Observe judges one input/output exchange. Infrastructure failures resolve
// through the configured fail mode; under fail-closed an unreachable or
// unreadable judge yields an unsafe verdict.
func (o *Observer) Observe(ctx context.Context, input, output string) (*types.ObservationResult, error) {
	prompt := fmt.Sprintf(judgeUserPromptTemplate, input, output)

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var completion *providers.CompletionResponse
	err := o.breaker.Execute(func() error {
		var askErr error
		completion, askErr = o.client.Ask(callCtx, o.providerCfg, prompt)
		return askErr
	})
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(o.provider, "error").Inc()
		o.logger.WithError(err).WithField("observer", ObserverName).Warn("judge call failed")
		return o.resolveFailure(fmt.Errorf("%w: %v", types.ErrProviderUnavailable, err))
	}
	metrics.ProviderCallsTotal.WithLabelValues(o.provider, "success").Inc()

	verdict, parseErr := o.parseVerdict(completion.Response)
	if parseErr != nil {
		o.logger.WithError(parseErr).WithField("observer", ObserverName).Warn("unparsable judge verdict")
		return o.resolveFailure(parseErr)
	}
	return verdict, nil
}

func (o *Observer) resolveFailure(cause error) (*types.ObservationResult, error) {
	switch o.failMode {
	case config.FailOpen:
		return &types.ObservationResult{
			InputMalicious: false,
			AIComplied:     false,
			IsSafe:         true,
			Reasoning:      fmt.Sprintf("judge unavailable, fail-open: %v", cause),
		}, nil
	case config.FailRaise:
		return nil, cause
	default:
		// Fail-closed assumes the worst quadrant.
		return &types.ObservationResult{
			InputMalicious: true,
			AIComplied:     true,
			IsSafe:         false,
			Reasoning:      fmt.Sprintf("judge unavailable, fail-closed: %v", cause),
		}, nil
	}
}

// parseVerdict reads the judge reply. Judge models wrap JSON in markdown
// fences or prose often enough that strict parsing alone loses verdicts, so
// a failed parse retries on the outermost brace-delimited span and on a copy
// with Python-style boolean literals lowered.
func (o *Observer) parseVerdict(reply string) (*types.ObservationResult, error) {
	candidates := []string{strings.TrimSpace(reply)}
	if span := extractJSONSpan(reply); span != "" {
		candidates = append(candidates, span)
	}
	for _, candidate := range candidates[:len(candidates):len(candidates)] {
		if folded := foldBoolTokens(candidate); folded != candidate {
			candidates = append(candidates, folded)
		}
	}

	for _, candidate := range candidates {
		v, err := fastjson.Parse(candidate)
		if err != nil {
			continue
		}
		if !v.Exists("input_malicious") || !v.Exists("ai_complied") {
			continue
		}
		inputMalicious := v.GetBool("input_malicious")
		aiComplied := v.GetBool("ai_complied")
		return &types.ObservationResult{
			InputMalicious: inputMalicious,
			AIComplied:     aiComplied,
			IsSafe:         !(inputMalicious && aiComplied),
			Reasoning:      string(v.GetStringBytes("reasoning")),
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrUnparsableVerdict, truncate(reply, 120))
}

var boolTokens = []string{"True", "TRUE", "False", "FALSE"}

// foldBoolTokens lowercases bare True/False literals outside of JSON strings.
// Some judge models emit Python-style booleans that fastjson rejects.
func foldBoolTokens(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '"' && (i == 0 || s[i-1] != '\\') {
			inString = !inString
			b.WriteByte(c)
			i++
			continue
		}
		if !inString && (c == 'T' || c == 'F') {
			matched := ""
			for _, tok := range boolTokens {
				if strings.HasPrefix(s[i:], tok) {
					matched = tok
					break
				}
			}
			if matched != "" && !isWordByte(s, i-1) && !isWordByte(s, i+len(matched)) {
				b.WriteString(strings.ToLower(matched))
				i += len(matched)
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

func isWordByte(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func extractJSONSpan(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
