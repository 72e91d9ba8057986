package render

import (
	"csvdash/domain/analysis"
	"csvdash/domain/dashboard"
)

// Event is a UI signal consumed by Engine.Handle
type Event interface {
	eventName() string
}

// SectionSelected is emitted by navigation
type SectionSelected struct {
	Section dashboard.Section
}

// ModeChanged is emitted by a per-chart mode toggle
type ModeChanged struct {
	Selector dashboard.ModeSelector
	Mode     dashboard.DisplayMode
}

// PayloadLoaded is emitted when an upload completes. Seq comes from Engine.BeginUpload;
// zero means the payload did not come from a tracked upload (demo data, files).
type PayloadLoaded struct {
	Seq     uint64
	Payload *analysis.Payload
}

func (SectionSelected) eventName() string { return "section_selected" }
func (ModeChanged) eventName() string     { return "mode_changed" }
func (PayloadLoaded) eventName() string   { return "payload_loaded" }
