package embedding

import (
	"context"
	"errors"
	"math"
)

var ErrProviderNonOKResponse = errors.New("provider returned non-OK response")

// Vector is a unit-normalized embedding vector.
type Vector []float64

// Config carries the provider settings for one generation call.
type Config struct {
	Model  string
	APIKey string
}

// Creator generates embeddings from an external provider.
type Creator interface {
	Generate(ctx context.Context, text string, cfg *Config) (Vector, error)
}

// Cosine returns the cosine similarity of two vectors, 0 when either is
// empty or their dimensions differ.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
