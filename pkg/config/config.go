package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sentinel-seed/sentinel/pkg/types"
)

// Strictness selects a block-threshold preset. Stricter profiles block at
// lower aggregate scores.
type Strictness string

const (
	StrictnessLenient  Strictness = "lenient"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

var strictnessThresholds = map[Strictness]float64{
	StrictnessLenient:  0.85,
	StrictnessStandard: 0.70,
	StrictnessStrict:   0.50,
}

// Threshold returns the block threshold for the profile.
func (s Strictness) Threshold() float64 {
	if t, ok := strictnessThresholds[s]; ok {
		return t
	}
	return strictnessThresholds[StrictnessStandard]
}

// FailMode decides how infrastructure failures resolve.
type FailMode string

const (
	// FailOpen treats infrastructure errors as safe.
	FailOpen FailMode = "open"
	// FailClosed treats infrastructure errors as unsafe. Mandatory default
	// for anything feeding Gates 2 and 3.
	FailClosed FailMode = "closed"
	// FailRaise propagates the error to the caller.
	FailRaise FailMode = "raise"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Validation ValidationConfig `mapstructure:"validation"`
	Judge      JudgeConfig      `mapstructure:"judge"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	LogLevel    string `mapstructure:"log_level"`
}

// ValidationConfig carries the tunables recognized by both validators and
// the orchestrator.
type ValidationConfig struct {
	Strictness         Strictness         `mapstructure:"strictness"`
	BlockThreshold     float64            `mapstructure:"block_threshold"`
	CorroborationBoost float64            `mapstructure:"corroboration_boost"`
	ComponentWeights   map[string]float64 `mapstructure:"component_weights"`
	EnabledComponents  []string           `mapstructure:"enabled_components"`
	DisabledComponents []string           `mapstructure:"disabled_components"`
	Gate3SampleRate    float64            `mapstructure:"gate3_sample_rate"`
	FailMode           FailMode           `mapstructure:"fail_mode"`
	MaxTextSize        int                `mapstructure:"max_text_size"`
	ValidationTimeout  time.Duration      `mapstructure:"validation_timeout"`
}

// JudgeConfig configures the secondary judge model used by Gate 3. The judge
// is always independently configured from the model under test.
type JudgeConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures uint32        `mapstructure:"max_failures"`
}

type EmbeddingConfig struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Threshold float64       `mapstructure:"threshold"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}
	globalConfig.ApplyDefaults()
	return globalConfig.Validate()
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func GetConfig() *Config {
	return &globalConfig
}

// DefaultValidationConfig returns the tunables used when nothing is
// configured. The numeric values are defaults, not contracts.
func DefaultValidationConfig() ValidationConfig {
	cfg := ValidationConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MetricsPort == 0 {
		c.Server.MetricsPort = 9090
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	c.Validation.applyDefaults()
	if c.Judge.MaxTokens == 0 {
		c.Judge.MaxTokens = 512
	}
	if c.Judge.Timeout == 0 {
		c.Judge.Timeout = 15 * time.Second
	}
	if c.Judge.MaxFailures == 0 {
		c.Judge.MaxFailures = 5
	}
	if c.Embedding.Timeout == 0 {
		c.Embedding.Timeout = 10 * time.Second
	}
	if c.Embedding.Threshold == 0 {
		c.Embedding.Threshold = 0.82
	}
}

func (v *ValidationConfig) applyDefaults() {
	if v.Strictness == "" {
		v.Strictness = StrictnessStandard
	}
	if v.BlockThreshold == 0 {
		v.BlockThreshold = v.Strictness.Threshold()
	}
	if v.CorroborationBoost == 0 {
		v.CorroborationBoost = 1.15
	}
	if v.FailMode == "" {
		v.FailMode = FailClosed
	}
	if v.MaxTextSize == 0 {
		v.MaxTextSize = 64 * 1024
	}
	if v.ValidationTimeout == 0 {
		v.ValidationTimeout = 5 * time.Second
	}
}

// Validate fails fast on invalid thresholds or weights so a bad value can
// never surface at call time.
func (c *Config) Validate() error {
	return c.Validation.Validate()
}

func (v *ValidationConfig) Validate() error {
	switch v.Strictness {
	case StrictnessLenient, StrictnessStandard, StrictnessStrict:
	default:
		return &types.ConfigurationError{Field: "strictness", Reason: fmt.Sprintf("unknown profile %q", v.Strictness)}
	}
	if v.BlockThreshold <= 0 || v.BlockThreshold > 1 {
		return &types.ConfigurationError{Field: "block_threshold", Reason: "must be in (0,1]"}
	}
	if v.CorroborationBoost < 1 {
		return &types.ConfigurationError{Field: "corroboration_boost", Reason: "must be >= 1"}
	}
	if v.Gate3SampleRate < 0 || v.Gate3SampleRate > 1 {
		return &types.ConfigurationError{Field: "gate3_sample_rate", Reason: "must be in [0,1]"}
	}
	switch v.FailMode {
	case FailOpen, FailClosed, FailRaise:
	default:
		return &types.ConfigurationError{Field: "fail_mode", Reason: fmt.Sprintf("unknown mode %q", v.FailMode)}
	}
	if v.MaxTextSize <= 0 {
		return &types.ConfigurationError{Field: "max_text_size", Reason: "must be positive"}
	}
	if v.ValidationTimeout <= 0 {
		return &types.ConfigurationError{Field: "validation_timeout", Reason: "must be positive"}
	}
	for name, w := range v.ComponentWeights {
		if w < 0 {
			return &types.ConfigurationError{Field: "component_weights", Reason: fmt.Sprintf("weight for %s must be >= 0", name)}
		}
	}
	return nil
}
