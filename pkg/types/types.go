package types

import "time"

// AttackType classifies input-side detections.
type AttackType string

const (
	AttackJailbreak      AttackType = "jailbreak"
	AttackInjection      AttackType = "prompt_injection"
	AttackHarmfulRequest AttackType = "harmful_request"
	AttackEscalation     AttackType = "multi_turn_escalation"
	AttackRoleplay       AttackType = "roleplay_framing"
	AttackObfuscation    AttackType = "encoded_obfuscation"
)

var attackSeverity = map[AttackType]float64{
	AttackJailbreak:      0.9,
	AttackInjection:      0.85,
	AttackHarmfulRequest: 1.0,
	AttackEscalation:     0.7,
	AttackRoleplay:       0.6,
	AttackObfuscation:    0.75,
}

// Severity returns the intrinsic weight of the attack class.
func (a AttackType) Severity() float64 {
	if s, ok := attackSeverity[a]; ok {
		return s
	}
	return 0.5
}

// ProtocolGate is one of the four protocol categories output failures map onto.
type ProtocolGate string

const (
	GateTruth   ProtocolGate = "truth"
	GateHarm    ProtocolGate = "harm"
	GateScope   ProtocolGate = "scope"
	GatePurpose ProtocolGate = "purpose"
)

// CheckFailureType classifies output-side detections.
type CheckFailureType string

const (
	FailureHarmfulContent      CheckFailureType = "harmful_content"
	FailureDeception           CheckFailureType = "deception"
	FailureJailbreakCompliance CheckFailureType = "jailbreak_compliance"
	FailurePolicyViolation     CheckFailureType = "policy_violation"
	FailureRefusalBypass       CheckFailureType = "refusal_bypass"
)

var failureGateTable = map[CheckFailureType][]ProtocolGate{
	FailureHarmfulContent:      {GateHarm},
	FailureDeception:           {GateTruth},
	FailureJailbreakCompliance: {GateScope, GatePurpose},
	FailurePolicyViolation:     {GateScope},
	FailureRefusalBypass:       {GateHarm, GatePurpose},
}

// Gates returns the protocol gates a failure type maps to.
func (f CheckFailureType) Gates() []ProtocolGate {
	gates, ok := failureGateTable[f]
	if !ok {
		return []ProtocolGate{GateScope}
	}
	out := make([]ProtocolGate, len(gates))
	copy(out, gates)
	return out
}

// DetectionResult is the outcome of a single detector or checker invocation.
// Category and Evidence are set only when Detected is true. A non-empty Error
// marks a component failure; such results never detect.
type DetectionResult struct {
	Detected   bool           `json:"detected"`
	Confidence float64        `json:"confidence"`
	Category   string         `json:"category,omitempty"`
	Evidence   []string       `json:"evidence,omitempty"`
	Gates      []ProtocolGate `json:"gates,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// ClampConfidence bounds a confidence score to [0,1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Turn is a single prior exchange in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnalysisContext carries optional context into a component run. For
// detectors, History holds prior turns and Normalization what the
// de-obfuscation passes found; for checkers, OriginalText holds the user
// input the model was responding to.
type AnalysisContext struct {
	OriginalText  string
	History       []Turn
	Normalization *NormalizationResult
}

// ComponentResult is one slot of a registry run: the component's name, its
// configured weight at run time, and what it returned.
type ComponentResult struct {
	Name      string          `json:"name"`
	Weight    float64         `json:"weight"`
	Detection DetectionResult `json:"detection"`
}

// InputValidationResult is the Gate 1 verdict.
type InputValidationResult struct {
	IsSafe          bool                `json:"is_safe"`
	Blocked         bool                `json:"blocked"`
	Confidence      float64             `json:"confidence"`
	Violations      []string            `json:"violations"`
	DetectorResults []ComponentResult   `json:"detector_results"`
	Normalization   NormalizationResult `json:"normalization"`
	Timestamp       time.Time           `json:"timestamp"`
}

// OutputValidationResult is the Gate 2 verdict. SeedFailed records that the
// steering instructions did not prevent a violation in the response.
type OutputValidationResult struct {
	IsSafe         bool              `json:"is_safe"`
	SeedFailed     bool              `json:"seed_failed"`
	Confidence     float64           `json:"confidence"`
	Violations     []string          `json:"violations"`
	FailedGates    []ProtocolGate    `json:"failed_gates"`
	CheckerResults []ComponentResult `json:"checker_results"`
	Timestamp      time.Time         `json:"timestamp"`
}

// Blocked is an alias of SeedFailed.
func (r *OutputValidationResult) Blocked() bool {
	return r.SeedFailed
}

// ObservationResult is the Gate 3 verdict. IsSafe is always derived, never
// assigned independently: the exchange is unsafe exactly when a malicious
// input was complied with.
type ObservationResult struct {
	InputMalicious bool   `json:"input_malicious"`
	AIComplied     bool   `json:"ai_complied"`
	IsSafe         bool   `json:"is_safe"`
	Reasoning      string `json:"reasoning"`
}

// PipelineStage names where a transaction ended.
type PipelineStage string

const (
	StageBlockedAtInput  PipelineStage = "blocked_at_input"
	StageBlockedAtOutput PipelineStage = "blocked_at_output"
	StageCompleted       PipelineStage = "completed"
)

// SentinelResult combines up to three gate verdicts for one transaction.
// Gate2 and Gate3 are nil when their gates never ran.
type SentinelResult struct {
	TraceID  string                  `json:"trace_id"`
	IsSafe   bool                    `json:"is_safe"`
	Stage    PipelineStage           `json:"stage"`
	Gate1    *InputValidationResult  `json:"gate1"`
	Gate2    *OutputValidationResult `json:"gate2,omitempty"`
	Gate3    *ObservationResult      `json:"gate3,omitempty"`
	Output   string                  `json:"output,omitempty"`
	Trace    []string                `json:"trace"`
	Duration time.Duration           `json:"duration_ns"`
}
