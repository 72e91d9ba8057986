package ui

import (
	"context"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"csvdash/adapters/charts"
	"csvdash/domain/analysis"
	"csvdash/domain/dashboard"
	"csvdash/internal"
	"csvdash/internal/render"
	"csvdash/ports"
)

// Upload status texts shown above the dashboard
const (
	StatusUploading = "Uploading..."
	StatusProcessed = "File processed"
	StatusFailed    = "Error uploading CSV"
)

// Options configures the web server
type Options struct {
	MaxUploadMB int
	// UploadTimeout bounds one round trip to the analysis service
	UploadTimeout time.Duration
	// Demo, when set, is loaded before the first upload
	Demo *analysis.Payload
	Now  func() time.Time
}

// Server is the dashboard web server. The engine is only ever touched while holding mu,
// so HTTP handlers observe events in a single order.
type Server struct {
	router    *gin.Engine
	templates *template.Template
	log       *internal.Logger

	mu       sync.Mutex
	engine   *render.Engine
	status   string
	failed   bool
	filename string
	version  uint64

	canvas    *charts.Canvas
	uploader  ports.UploadTransport
	exporters map[string]ports.ReportExporter

	// uploadGate admits one upload at a time
	uploadGate *semaphore.Weighted
	opts       Options
}

// NewServer wires the routes around an engine drawing onto canvas
func NewServer(engine *render.Engine, canvas *charts.Canvas, uploader ports.UploadTransport,
	exporters map[string]ports.ReportExporter, opts Options, logger *internal.Logger) (*Server, error) {
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 50
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = 60 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:     gin.New(),
		templates:  templates,
		log:        logger.With("UI"),
		engine:     engine,
		canvas:     canvas,
		uploader:   uploader,
		exporters:  exporters,
		uploadGate: semaphore.NewWeighted(1),
		opts:       opts,
	}

	if opts.Demo != nil {
		s.loadDemo(opts.Demo)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// loadDemo renders the demo payload, then shows the home section as on first visit
func (s *Server) loadDemo(p *analysis.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.engine.Handle(render.PayloadLoaded{Payload: p}); err != nil {
		s.log.Warn("demo payload not loaded: %v", err)
		return
	}
	s.filename = "demo"
	if _, err := s.engine.Handle(render.SectionSelected{Section: dashboard.SectionHome}); err != nil {
		s.log.Warn("selecting home section failed: %v", err)
	}
	s.version++
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/section/:name", s.handleSection)
	s.router.POST("/mode", s.handleMode)
	s.router.POST("/upload", s.handleUpload)
	s.router.GET("/charts/:target", s.handleChart)
	s.router.GET("/api/state", s.handleState)
	s.router.GET("/export/:format", s.handleExport)
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Handler exposes the router for http.Server and tests
func (s *Server) Handler() http.Handler { return s.router }

// Start serves on addr until ctx is cancelled, then shuts down gracefully and releases
// every live chart.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)

	s.mu.Lock()
	s.engine.Close()
	s.mu.Unlock()
	s.log.Info("dashboard stopped")
	return err
}
