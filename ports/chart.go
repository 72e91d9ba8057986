package ports

import (
	"csvdash/domain/dashboard"
)

// ChartHandle is one live chart bound to a render target
type ChartHandle interface {
	// Destroy releases the drawing resources held by the chart. Calling it twice is a no-op.
	Destroy() error
}

// ChartLibrary draws charts onto render targets
type ChartLibrary interface {
	Create(target dashboard.TargetID, spec dashboard.ChartSpec) (ChartHandle, error)
}

// SurfaceRegistry reports which render targets currently have a drawing surface.
// Rendering to a target without a surface is skipped, not an error.
type SurfaceRegistry interface {
	Has(target dashboard.TargetID) bool
}
