package render

import (
	"sort"

	"csvdash/domain/dashboard"
	"csvdash/internal"
	"csvdash/internal/errors"
	"csvdash/ports"
)

// ChartManager binds charts to render targets. A target owns at most one live chart:
// the previous one is destroyed before its replacement is created.
type ChartManager struct {
	library  ports.ChartLibrary
	surfaces ports.SurfaceRegistry
	live     map[dashboard.TargetID]ports.ChartHandle
	log      *internal.Logger
}

// NewChartManager creates a manager drawing with library onto the registered surfaces
func NewChartManager(library ports.ChartLibrary, surfaces ports.SurfaceRegistry, logger *internal.Logger) *ChartManager {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ChartManager{
		library:  library,
		surfaces: surfaces,
		live:     make(map[dashboard.TargetID]ports.ChartHandle),
		log:      logger.With("ChartManager"),
	}
}

// RenderToTarget replaces the chart bound to target. It returns false without error when
// the target has no surface registered.
func (m *ChartManager) RenderToTarget(target dashboard.TargetID, spec dashboard.ChartSpec) (bool, error) {
	if m.surfaces == nil || !m.surfaces.Has(target) {
		m.log.Debug("no surface for %s, skipping", target)
		return false, nil
	}

	if err := m.Release(target); err != nil {
		m.log.Warn("destroy of previous chart on %s failed: %v", target, err)
	}

	handle, err := m.library.Create(target, spec)
	if err != nil {
		return false, errors.Wrapf(err, "create %s chart on %s", spec.Kind, target)
	}
	if handle == nil {
		return false, errors.InternalError("chart library returned no handle for " + string(target))
	}
	m.live[target] = handle
	m.log.Trace("bound %s chart to %s (%d points)", spec.Kind, target, len(spec.Values))
	return true, nil
}

// Release destroys the chart bound to target, if any. The binding is dropped even when
// Destroy fails.
func (m *ChartManager) Release(target dashboard.TargetID) error {
	handle, ok := m.live[target]
	if !ok {
		return nil
	}
	delete(m.live, target)
	return handle.Destroy()
}

// ReleaseAll destroys every live chart
func (m *ChartManager) ReleaseAll() {
	for _, target := range m.LiveTargets() {
		if err := m.Release(target); err != nil {
			m.log.Warn("destroy of %s failed: %v", target, err)
		}
	}
}

// Live reports whether a chart is bound to target
func (m *ChartManager) Live(target dashboard.TargetID) bool {
	_, ok := m.live[target]
	return ok
}

// LiveTargets lists the targets with a bound chart, sorted
func (m *ChartManager) LiveTargets() []dashboard.TargetID {
	targets := make([]dashboard.TargetID, 0, len(m.live))
	for t := range m.live {
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}
