package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sentinel-seed/sentinel/pkg/infra/metrics"
	"github.com/sentinel-seed/sentinel/pkg/types"
)

// Side labels which gate a registry serves.
type Side string

const (
	SideInput  Side = "input"
	SideOutput Side = "output"
)

// Component is the one capability both detectors and checkers implement.
// Implementations must be deterministic and side-effect-free for identical
// input and configuration, return a non-detecting result on empty input,
// and surface internal problems as errors rather than panicking.
type Component interface {
	Name() string
	Analyze(ctx context.Context, text string, actx *types.AnalysisContext) (types.DetectionResult, error)
}

// Stats are the running totals kept per registered component.
type Stats struct {
	Invocations     int64 `json:"invocations"`
	Errors          int64 `json:"errors"`
	ContextProvided int64 `json:"context_provided"`
}

type componentStats struct {
	invocations     atomic.Int64
	errors          atomic.Int64
	contextProvided atomic.Int64
}

type entry struct {
	component Component
	weight    float64
	enabled   bool
	order     int
	stats     *componentStats
}

// ComponentInfo describes one registered component for listings.
type ComponentInfo struct {
	Name    string  `json:"name"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
	Stats   Stats   `json:"stats"`
}

// Registry owns a named, weighted, enable/disable-able set of components.
// It is long-lived shared state: configuration toggles are guarded by a
// RWMutex, statistics are monotonic atomic counters, and a single run never
// depends on interleaving with concurrent runs.
type Registry struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	nextOrder int
	side      Side
	logger    *logrus.Logger
}

func NewRegistry(side Side, logger *logrus.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		side:    side,
		logger:  logger,
	}
}

// Register adds a component with the given weight, enabled. Registering a
// name again replaces the previous component in place; it never silently
// shadows it.
func (r *Registry) Register(component Component, weight float64) error {
	return r.RegisterWith(component, weight, true)
}

func (r *Registry) RegisterWith(component Component, weight float64, enabled bool) error {
	if component == nil {
		return fmt.Errorf("component must not be nil")
	}
	name := component.Name()
	if name == "" {
		return fmt.Errorf("component name must not be empty")
	}
	if weight < 0 {
		return &types.ConfigurationError{Field: "weight", Reason: fmt.Sprintf("weight for %s must be >= 0", name)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[name]; ok {
		existing.component = component
		existing.weight = weight
		existing.enabled = enabled
		return nil
	}
	r.entries[name] = &entry{
		component: component,
		weight:    weight,
		enabled:   enabled,
		order:     r.nextOrder,
		stats:     &componentStats{},
	}
	r.nextOrder++
	return nil
}

func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return fmt.Errorf("component %s not registered", name)
	}
	delete(r.entries, name)
	return nil
}

func (r *Registry) SetWeight(name string, weight float64) error {
	if weight < 0 {
		return &types.ConfigurationError{Field: "weight", Reason: fmt.Sprintf("weight for %s must be >= 0", name)}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("component %s not registered", name)
	}
	e.weight = weight
	return nil
}

func (r *Registry) Enable(name string) error {
	return r.setEnabled(name, true)
}

func (r *Registry) Disable(name string) error {
	return r.setEnabled(name, false)
}

func (r *Registry) setEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("component %s not registered", name)
	}
	e.enabled = enabled
	return nil
}

// Components lists all registered components with their current settings
// and statistics.
func (r *Registry) Components() []ComponentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ComponentInfo, 0, len(r.entries))
	for name, e := range r.entries {
		infos = append(infos, ComponentInfo{
			Name:    name,
			Weight:  e.weight,
			Enabled: e.enabled,
			Stats: Stats{
				Invocations:     e.stats.invocations.Load(),
				Errors:          e.stats.errors.Load(),
				ContextProvided: e.stats.contextProvided.Load(),
			},
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

type snapshotEntry struct {
	name      string
	component Component
	weight    float64
	order     int
	stats     *componentStats
}

// RunAll executes every enabled component against the text. Components run
// concurrently, but the returned slice always preserves registration order
// (name tiebreak), never completion order. One component's failure never
// blocks the others nor omits it from the output: its slot carries an error
// marker and a non-detecting result.
func (r *Registry) RunAll(ctx context.Context, text string, actx *types.AnalysisContext) []types.ComponentResult {
	r.mu.RLock()
	snapshot := make([]snapshotEntry, 0, len(r.entries))
	for name, e := range r.entries {
		if !e.enabled {
			continue
		}
		snapshot = append(snapshot, snapshotEntry{
			name:      name,
			component: e.component,
			weight:    e.weight,
			order:     e.order,
			stats:     e.stats,
		})
	}
	r.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].order != snapshot[j].order {
			return snapshot[i].order < snapshot[j].order
		}
		return snapshot[i].name < snapshot[j].name
	})

	results := make([]types.ComponentResult, len(snapshot))
	g, groupCtx := errgroup.WithContext(ctx)
	for i, s := range snapshot {
		i, s := i, s
		g.Go(func() error {
			results[i] = types.ComponentResult{
				Name:      s.name,
				Weight:    s.weight,
				Detection: r.invoke(groupCtx, s, text, actx),
			}
			return nil
		})
	}
	// Goroutines never return errors; failures are encoded in the slots.
	_ = g.Wait()
	return results
}

func (r *Registry) invoke(ctx context.Context, s snapshotEntry, text string, actx *types.AnalysisContext) (detection types.DetectionResult) {
	s.stats.invocations.Add(1)
	metrics.ComponentRunsTotal.WithLabelValues(string(r.side), s.name).Inc()
	if actx != nil {
		s.stats.contextProvided.Add(1)
	}

	defer func() {
		if rec := recover(); rec != nil {
			detection = r.failedDetection(s.name, fmt.Sprintf("panic: %v", rec))
		}
		detection.Confidence = types.ClampConfidence(detection.Confidence)
		if !detection.Detected {
			detection.Category = ""
			detection.Evidence = nil
			detection.Gates = nil
		} else {
			metrics.ComponentFiredTotal.WithLabelValues(string(r.side), s.name, detection.Category).Inc()
		}
	}()

	result, err := s.component.Analyze(ctx, text, actx)
	if err != nil {
		return r.failedDetection(s.name, err.Error())
	}
	return result
}

func (r *Registry) failedDetection(name, reason string) types.DetectionResult {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if ok {
		e.stats.errors.Add(1)
	}
	metrics.ComponentErrorsTotal.WithLabelValues(string(r.side), name).Inc()
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			"component": name,
			"side":      r.side,
			"reason":    reason,
		}).Warn("component failure isolated")
	}
	return types.DetectionResult{
		Detected:   false,
		Confidence: 0,
		Error:      reason,
	}
}
