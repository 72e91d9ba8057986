package render

import (
	stderrors "errors"
	"fmt"
	"sort"

	"csvdash/domain/analysis"
	"csvdash/domain/dashboard"
	"csvdash/internal"
	"csvdash/internal/errors"
	"csvdash/ports"
)

// Options configures an Engine
type Options struct {
	Threshold float64
	MeansKind dashboard.ChartKind
	Formatter *NumberFormatter
	Logger    *internal.Logger
}

// Summary is the content of the home section
type Summary struct {
	Loaded         bool
	RowCount       int
	DuplicateRows  int
	NullColumns    int
	NumericColumns int
	Highlighted    int
}

// Result reports what one reconciliation pass did
type Result struct {
	Section     dashboard.Section
	Rendered    []dashboard.TargetID
	Skipped     []dashboard.TargetID
	Failures    map[dashboard.Section]error
	Summary     *Summary
	Table       *dashboard.TableProjection
	Suggestions []string
	Stale       bool
}

// Err joins every section failure, nil when all sections rendered.
func (r *Result) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	sections := make([]string, 0, len(r.Failures))
	for s := range r.Failures {
		sections = append(sections, string(s))
	}
	sort.Strings(sections)
	errs := make([]error, 0, len(sections))
	for _, s := range sections {
		errs = append(errs, r.Failures[dashboard.Section(s)])
	}
	return stderrors.Join(errs...)
}

// State is a read-only view of the engine for status endpoints
type State struct {
	Loaded      bool                                            `json:"loaded"`
	Section     dashboard.Section                               `json:"section"`
	Modes       map[dashboard.ModeSelector]dashboard.DisplayMode `json:"modes"`
	LiveTargets []dashboard.TargetID                            `json:"liveTargets"`
	Sequence    uint64                                          `json:"sequence"`
	Threshold   float64                                         `json:"threshold"`
}

// Engine owns the loaded payload, the display modes and the live charts. It is not safe
// for concurrent use: callers serialize access, mirroring the single UI thread.
type Engine struct {
	payload *analysis.Payload
	modes   map[dashboard.ModeSelector]dashboard.DisplayMode
	section dashboard.Section
	charts  *ChartManager
	opts    Options
	log     *internal.Logger

	issued  uint64
	applied uint64
}

// NewEngine creates an engine drawing through library onto surfaces
func NewEngine(library ports.ChartLibrary, surfaces ports.SurfaceRegistry, opts Options) *Engine {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.MeansKind == "" {
		opts.MeansKind = dashboard.KindBar
	}
	if opts.Formatter == nil {
		opts.Formatter = NewNumberFormatter("en")
	}
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}
	modes := make(map[dashboard.ModeSelector]dashboard.DisplayMode, len(dashboard.Selectors))
	for _, s := range dashboard.Selectors {
		modes[s] = dashboard.ModeCount
	}
	return &Engine{
		modes:   modes,
		section: dashboard.SectionHome,
		charts:  NewChartManager(library, surfaces, opts.Logger),
		opts:    opts,
		log:     opts.Logger.With("RenderEngine"),
	}
}

// Payload returns the loaded payload, nil before the first load
func (e *Engine) Payload() *analysis.Payload { return e.payload }

// Section returns the selected section
func (e *Engine) Section() dashboard.Section { return e.section }

// Threshold returns the cleaning highlight threshold
func (e *Engine) Threshold() float64 { return e.opts.Threshold }

// Formatter returns the number formatter used for ticks and table cells
func (e *Engine) Formatter() *NumberFormatter { return e.opts.Formatter }

// Mode returns the display mode of a selector, count by default
func (e *Engine) Mode(selector dashboard.ModeSelector) dashboard.DisplayMode {
	if m, ok := e.modes[selector]; ok {
		return m
	}
	return dashboard.ModeCount
}

// Charts exposes the lifecycle manager
func (e *Engine) Charts() *ChartManager { return e.charts }

// BeginUpload reserves a sequence number for an upload about to start.
func (e *Engine) BeginUpload() uint64 {
	e.issued++
	return e.issued
}

// Handle applies one UI event and re-renders what it affects.
func (e *Engine) Handle(ev Event) (*Result, error) {
	switch ev := ev.(type) {
	case SectionSelected:
		section := ev.Section
		if section == "" {
			section = dashboard.SectionAll
		}
		e.section = section
		return e.Reconcile(section), nil

	case ModeChanged:
		target := ev.Selector.Target()
		if target == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("unknown mode selector %q", ev.Selector))
		}
		if ev.Mode != dashboard.ModeCount && ev.Mode != dashboard.ModePercent {
			return nil, errors.InvalidInput(fmt.Sprintf("unknown display mode %q", ev.Mode))
		}
		e.modes[ev.Selector] = ev.Mode
		return e.Reconcile(target.Section()), nil

	case PayloadLoaded:
		if ev.Seq != 0 && ev.Seq < e.applied {
			e.log.Warn("discarding stale payload from upload #%d, #%d already applied", ev.Seq, e.applied)
			return &Result{Section: e.section, Stale: true}, nil
		}
		if ev.Seq > e.applied {
			e.applied = ev.Seq
		}
		if ev.Seq > e.issued {
			e.issued = ev.Seq
		}
		// Charts of the previous payload must not outlive it.
		e.charts.ReleaseAll()
		e.payload = ev.Payload
		if e.payload == nil {
			e.payload = &analysis.Payload{}
		}
		e.section = dashboard.SectionNulls
		e.log.Info("payload loaded (upload #%d, %d rows)", ev.Seq, e.payload.RowCount)
		result := e.Reconcile(dashboard.SectionAll)
		result.Section = e.section
		return result, nil

	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported event %T", ev))
	}
}

// Reconcile renders exactly the sections covered by section. Each section is its own
// failure domain: an error or panic in one is recorded and the others still render.
func (e *Engine) Reconcile(section dashboard.Section) *Result {
	result := &Result{Section: section, Failures: make(map[dashboard.Section]error)}
	if e.payload == nil {
		result.Summary = &Summary{}
		return result
	}

	for _, s := range dashboard.Sections {
		if !section.Includes(s) {
			continue
		}
		if err := e.renderSection(s, result); err != nil {
			renderErr := errors.RenderError(string(s), err)
			e.log.Error("%v", renderErr)
			result.Failures[s] = renderErr
		}
	}
	return result
}

func (e *Engine) renderSection(s dashboard.Section, result *Result) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch s {
	case dashboard.SectionHome:
		result.Summary = e.summary()

	case dashboard.SectionNulls:
		series := DeriveNullsSeries(e.payload, e.Mode(dashboard.SelectorNulls))
		return e.draw(result, dashboard.TargetNulls, nullsChartSpec(series, e.opts.Formatter))

	case dashboard.SectionStatistics:
		table := ProjectStatsTable(e.payload, e.opts.Formatter)
		result.Table = &table
		series := DeriveMeansSeries(e.payload)
		return e.draw(result, dashboard.TargetMeans, meansChartSpec(series, e.opts.MeansKind, e.opts.Formatter))

	case dashboard.SectionOther:
		result.Suggestions = GenerateSuggestions(e.payload, e.opts.Threshold)
		dupes := DeriveDuplicatesSeries(e.payload, e.Mode(dashboard.SelectorDuplicates))
		if err := e.draw(result, dashboard.TargetDuplicates, duplicatesChartSpec(dupes, e.opts.Formatter)); err != nil {
			return err
		}
		highlights := DeriveCleaningHighlights(e.payload, e.opts.Threshold)
		return e.draw(result, dashboard.TargetCleaning, cleaningChartSpec(highlights, e.opts.Threshold))
	}
	return nil
}

func (e *Engine) draw(result *Result, target dashboard.TargetID, spec dashboard.ChartSpec) error {
	bound, err := e.charts.RenderToTarget(target, spec)
	if err != nil {
		return err
	}
	if bound {
		result.Rendered = append(result.Rendered, target)
	} else {
		result.Skipped = append(result.Skipped, target)
	}
	return nil
}

func (e *Engine) summary() *Summary {
	p := e.payload
	s := &Summary{Loaded: true, RowCount: p.RowCount}
	if p.DuplicateRowSummary != nil {
		s.DuplicateRows = p.DuplicateRowSummary.DuplicateCount
	}
	if p.NullsByColumn != nil {
		for _, c := range align(p.NullsByColumn.Counts, len(p.NullsByColumn.Labels)) {
			if c > 0 {
				s.NullColumns++
			}
		}
	}
	if p.NumericStats != nil {
		s.NumericColumns = len(p.NumericStats.Labels)
	}
	s.Highlighted = len(DeriveCleaningHighlights(p, e.opts.Threshold).Labels)
	return s
}

// State returns a snapshot for status endpoints
func (e *Engine) State() State {
	modes := make(map[dashboard.ModeSelector]dashboard.DisplayMode, len(e.modes))
	for k, v := range e.modes {
		modes[k] = v
	}
	return State{
		Loaded:      e.payload != nil,
		Section:     e.section,
		Modes:       modes,
		LiveTargets: e.charts.LiveTargets(),
		Sequence:    e.applied,
		Threshold:   e.opts.Threshold,
	}
}

// Close destroys every live chart
func (e *Engine) Close() {
	e.charts.ReleaseAll()
}
