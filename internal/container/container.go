package container

import (
	"context"
	"fmt"

	"csvdash/adapters/charts"
	"csvdash/adapters/excel"
	"csvdash/adapters/pdf"
	"csvdash/adapters/upload"
	"csvdash/domain/dashboard"
	"csvdash/internal"
	"csvdash/internal/config"
	"csvdash/internal/render"
	"csvdash/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Drawing
	Canvas  *charts.Canvas
	Library *charts.Library
	Engine  *render.Engine

	// Transport
	Uploader *upload.Client

	// Exporters keyed by format name (xlsx, pdf)
	Exporters map[string]ports.ReportExporter
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	c.initDrawing()
	c.initTransport()
	c.initExporters()
	return c, nil
}

// initDrawing registers a surface for every target the page shows. Hidden targets get
// none, so renders to them are skipped.
func (c *Container) initDrawing() {
	d := c.Config.Dashboard
	hidden := make(map[dashboard.TargetID]bool, len(d.HiddenTargets))
	for _, t := range d.HiddenTargets {
		hidden[dashboard.TargetID(t)] = true
	}

	c.Canvas = charts.NewCanvas()
	for _, t := range dashboard.Targets {
		if hidden[t] {
			c.Logger.Info("chart target %s hidden by configuration", t)
			continue
		}
		c.Canvas.Register(t)
	}

	c.Library = charts.NewLibrary(c.Canvas, d.ChartWidth, d.ChartHeight, c.Logger)
	c.Engine = render.NewEngine(c.Library, c.Canvas, render.Options{
		Threshold: d.CleaningThreshold,
		MeansKind: dashboard.ChartKind(d.MeansChart),
		Formatter: render.NewNumberFormatter(d.Locale),
		Logger:    c.Logger,
	})
}

func (c *Container) initTransport() {
	c.Uploader = upload.NewClient(upload.Config{
		UploadURL: c.Config.API.UploadURL(),
		Timeout:   c.Config.API.UploadTimeout,
	}, c.Logger)
}

func (c *Container) initExporters() {
	c.Exporters = map[string]ports.ReportExporter{
		"xlsx": excel.NewExporter(),
		"pdf":  pdf.NewExporter(),
	}
}

// Exporter returns the exporter for a format name
func (c *Container) Exporter(format string) (ports.ReportExporter, bool) {
	e, ok := c.Exporters[format]
	return e, ok
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	live := len(c.Engine.State().LiveTargets)
	c.Engine.Close()
	c.Logger.Info("container shut down, %d live charts released", live)
	return nil
}
