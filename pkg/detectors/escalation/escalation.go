package escalation

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

const DetectorName = "escalation"

const (
	defaultWindowSize    = 6
	persistenceWeight    = 0.7
	intensityWeight      = 0.45
	minTopicOverlap      = 2
	intensityFireMinimum = 2
)

// Config bounds the history window the trend analysis looks at.
type Config struct {
	WindowSize int `mapstructure:"window_size"`
}

// Detector analyzes multi-turn trends: persistence after a refusal and
// rising pressure across user turns. Without history it has no signal.
type Detector struct {
	logger     *logrus.Logger
	windowSize int
}

func NewDetector(logger *logrus.Logger, settings map[string]interface{}) (*Detector, error) {
	var cfg Config
	if settings != nil {
		if err := mapstructure.Decode(settings, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}
	if cfg.WindowSize == 0 {
		cfg.WindowSize = defaultWindowSize
	}
	if cfg.WindowSize < 2 {
		return nil, &types.ConfigurationError{Field: "window_size", Reason: "must be at least 2"}
	}
	return &Detector{logger: logger, windowSize: cfg.WindowSize}, nil
}

func (d *Detector) Name() string {
	return DetectorName
}

func (d *Detector) Analyze(_ context.Context, text string, actx *types.AnalysisContext) (types.DetectionResult, error) {
	if text == "" || actx == nil || len(actx.History) == 0 {
		return types.DetectionResult{}, nil
	}

	window := NewTurnWindow(d.windowSize)
	for _, turn := range actx.History {
		window.Add(turn)
	}
	turns := window.Turns()

	var confidence float64
	var evidence []string

	if marker, ok := d.persistsAfterRefusal(turns, text); ok {
		confidence += persistenceWeight
		evidence = append(evidence, fmt.Sprintf("request repeated after refusal (%q)", marker))
	}

	if hits := d.risingIntensity(turns, text); hits >= intensityFireMinimum {
		confidence += intensityWeight
		evidence = append(evidence, fmt.Sprintf("%d pressure markers across turns", hits))
	}

	if confidence == 0 {
		return types.DetectionResult{}, nil
	}
	return types.DetectionResult{
		Detected:   true,
		Confidence: types.ClampConfidence(confidence),
		Category:   string(types.AttackEscalation),
		Evidence:   evidence,
	}, nil
}

// persistsAfterRefusal reports whether an assistant refusal in the window is
// followed by user content that shares topic words with the current text.
func (d *Detector) persistsAfterRefusal(turns []types.Turn, current string) (string, bool) {
	currentTopics := topicWords(current)
	for i, turn := range turns {
		if !strings.EqualFold(turn.Role, "assistant") {
			continue
		}
		marker := matchMarker(turn.Content, refusalMarkers)
		if marker == "" {
			continue
		}
		overlap := 0
		for _, later := range turns[i+1:] {
			if strings.EqualFold(later.Role, "assistant") {
				continue
			}
			overlap += countOverlap(topicWords(later.Content), currentTopics)
		}
		// The current turn itself persisting on the refused topic counts.
		for _, earlier := range turns[:i] {
			if strings.EqualFold(earlier.Role, "assistant") {
				continue
			}
			if countOverlap(topicWords(earlier.Content), currentTopics) >= minTopicOverlap {
				overlap += minTopicOverlap
				break
			}
		}
		if overlap >= minTopicOverlap {
			return marker, true
		}
	}
	return "", false
}

func (d *Detector) risingIntensity(turns []types.Turn, current string) int {
	hits := 0
	for _, turn := range turns {
		if strings.EqualFold(turn.Role, "assistant") {
			continue
		}
		if matchMarker(turn.Content, intensityMarkers) != "" {
			hits++
		}
	}
	if matchMarker(current, intensityMarkers) != "" {
		hits++
	}
	return hits
}

func matchMarker(text string, markers []string) string {
	lowered := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lowered, m) {
			return m
		}
	}
	return ""
}

func topicWords(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func countOverlap(a, b map[string]struct{}) int {
	count := 0
	for w := range a {
		if _, ok := b[w]; ok {
			count++
		}
	}
	return count
}
