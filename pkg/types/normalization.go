package types

// ObfuscationTechnique names a normalization pass that fired.
type ObfuscationTechnique string

const (
	ObfuscationInvisible  ObfuscationTechnique = "invisible_chars"
	ObfuscationConfusable ObfuscationTechnique = "unicode_confusables"
	ObfuscationBase64     ObfuscationTechnique = "base64_encoding"
	ObfuscationHex        ObfuscationTechnique = "hex_encoding"
	ObfuscationRotation   ObfuscationTechnique = "rotation_cipher"
	ObfuscationLeetspeak  ObfuscationTechnique = "leetspeak"
	ObfuscationSpacing    ObfuscationTechnique = "keyword_fragmentation"
)

// NormalizationResult holds the de-obfuscated text alongside the original.
// Normalization is non-destructive: Original is always retained for audit.
type NormalizationResult struct {
	Original     string                           `json:"original"`
	Normalized   string                           `json:"normalized"`
	IsObfuscated bool                             `json:"is_obfuscated"`
	Techniques   []ObfuscationTechnique           `json:"techniques,omitempty"`
	Confidence   map[ObfuscationTechnique]float64 `json:"technique_confidence,omitempty"`
}
