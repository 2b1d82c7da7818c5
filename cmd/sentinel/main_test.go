package main

import (
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-seed/sentinel/pkg/config"
	"github.com/sentinel-seed/sentinel/pkg/detectors/pattern_attack"
	"github.com/sentinel-seed/sentinel/pkg/registry"
)

func newPatternRegistry(t *testing.T, logger *logrus.Logger) *registry.Registry {
	t.Helper()
	detector, err := pattern_attack.NewDetector(logger, nil)
	require.NoError(t, err)
	reg := registry.NewRegistry(registry.SideInput, logger)
	require.NoError(t, reg.Register(detector, 1.0))
	return reg
}

func TestApplyComponentConfigOverridesWeight(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	reg := newPatternRegistry(t, logger)
	cfg := config.DefaultValidationConfig()
	cfg.ComponentWeights = map[string]float64{pattern_attack.DetectorName: 0.25}

	applyComponentConfig(logger, cfg, reg)

	components := reg.Components()
	require.Len(t, components, 1)
	assert.Equal(t, 0.25, components[0].Weight)
}

func TestApplyComponentConfigSkipsNamesFromOtherRegistry(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()
	reg := newPatternRegistry(t, logger)
	cfg := config.DefaultValidationConfig()
	cfg.ComponentWeights = map[string]float64{"harmful_content": 0.5}

	applyComponentConfig(logger, cfg, reg)

	components := reg.Components()
	require.Len(t, components, 1)
	assert.Equal(t, 1.0, components[0].Weight)
}

func TestWarnUnknownComponents(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	reg := newPatternRegistry(t, logger)
	cfg := config.DefaultValidationConfig()
	cfg.ComponentWeights = map[string]float64{
		pattern_attack.DetectorName: 0.5,
		"pattern_atack":             1.0,
	}

	warnUnknownComponents(logger, cfg, reg)

	entries := hook.AllEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, logrus.WarnLevel, entries[0].Level)
	assert.Equal(t, "pattern_atack", entries[0].Data["component"])
}
