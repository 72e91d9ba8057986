package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"csvdash/domain/dashboard"
	"csvdash/internal/errors"
	"csvdash/internal/render"
	"csvdash/internal/report"
)

type navItem struct {
	Name   string
	Label  string
	Active bool
}

var sectionLabels = map[dashboard.Section]string{
	dashboard.SectionHome:       "Home",
	dashboard.SectionNulls:      "Nulls",
	dashboard.SectionStatistics: "Statistics",
	dashboard.SectionOther:      "Duplicates & cleaning",
}

type chartView struct {
	Target string
	Title  string
	URL    string
	Live   bool
}

// pageData is everything index.html shows
type pageData struct {
	Section     string
	Nav         []navItem
	Loaded      bool
	Filename    string
	Status      string
	StatusError bool
	SummaryHTML template.HTML
	Table       dashboard.TableProjection
	Suggestions []string
	NullsMode   string
	DupesMode   string
	Charts      map[string]chartView
	Threshold   float64
}

// Visible reports whether the page shows section s
func (p pageData) Visible(s string) bool {
	return p.Section == s || p.Section == string(dashboard.SectionAll)
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, "index.html", s.page())
}

// page snapshots the engine for rendering. Charts are only redrawn by events, the page
// just links the images currently on the canvas.
func (s *Server) page() pageData {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.engine
	p := e.Payload()
	data := pageData{
		Section:     string(e.Section()),
		Loaded:      p != nil,
		Filename:    s.filename,
		Status:      s.status,
		StatusError: s.failed,
		Table:       render.ProjectStatsTable(p, e.Formatter()),
		Suggestions: render.GenerateSuggestions(p, e.Threshold()),
		NullsMode:   string(e.Mode(dashboard.SelectorNulls)),
		DupesMode:   string(e.Mode(dashboard.SelectorDuplicates)),
		Charts:      make(map[string]chartView, len(dashboard.Targets)),
		Threshold:   e.Threshold(),
	}
	for _, sec := range dashboard.Sections {
		data.Nav = append(data.Nav, navItem{Name: string(sec), Label: sectionLabels[sec], Active: sec == e.Section()})
	}

	summary := e.Reconcile(dashboard.SectionHome).Summary
	data.SummaryHTML = template.HTML(report.ToHTML(report.SummaryMarkdown(summary, e.Threshold(), e.Formatter())))

	for _, t := range dashboard.Targets {
		_, live := s.canvas.Image(t)
		data.Charts[string(t)] = chartView{
			Target: string(t),
			Title:  s.canvas.Title(t),
			URL:    fmt.Sprintf("/charts/%s?v=%d", t, s.version),
			Live:   live,
		}
	}
	return data
}

func (s *Server) handleSection(c *gin.Context) {
	section, err := dashboard.ParseSection(c.Param("name"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	s.mu.Lock()
	result, err := s.engine.Handle(render.SectionSelected{Section: section})
	s.version++
	s.mu.Unlock()
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.logFailures(result)
	s.respondDone(c, result)
}

func (s *Server) handleMode(c *gin.Context) {
	selector := dashboard.ModeSelector(strings.TrimSpace(c.PostForm("selector")))
	mode, err := dashboard.ParseDisplayMode(c.PostForm("mode"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	s.mu.Lock()
	result, err := s.engine.Handle(render.ModeChanged{Selector: selector, Mode: mode})
	s.version++
	s.mu.Unlock()
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.logFailures(result)
	s.respondDone(c, result)
}

func (s *Server) handleChart(c *gin.Context) {
	target := dashboard.TargetID(c.Param("target"))
	png, ok := s.canvas.Image(target)
	if !ok {
		s.respondError(c, errors.NotFound("chart "+string(target)))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleState(c *gin.Context) {
	s.mu.Lock()
	state := s.engine.State()
	status, failed, filename := s.status, s.failed, s.filename
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"state":    state,
		"status":   status,
		"failed":   failed,
		"filename": filename,
	})
}

func (s *Server) handleExport(c *gin.Context) {
	format := strings.ToLower(c.Param("format"))
	exporter, ok := s.exporters[format]
	if !ok {
		s.respondError(c, errors.NotFound("export format "+format))
		return
	}

	s.mu.Lock()
	if s.engine.Payload() == nil {
		s.mu.Unlock()
		s.respondError(c, errors.NotFound("dataset"))
		return
	}
	rep := report.Build(s.engine, s.canvas, s.filename, s.opts.Now())
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := exporter.Export(&buf, rep); err != nil {
		s.log.Error("export %s failed: %v", format, err)
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="csvdash-report%s"`, exporter.Extension()))
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())
}

func (s *Server) logFailures(result *render.Result) {
	if err := result.Err(); err != nil {
		s.log.Warn("some sections failed to render: %v", err)
	}
}

// respondDone redirects browsers back to the dashboard and answers API clients with
// the reconciliation outcome.
func (s *Server) respondDone(c *gin.Context, result *render.Result) {
	if !wantsJSON(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	failures := make(map[string]string, len(result.Failures))
	for sec, err := range result.Failures {
		failures[string(sec)] = err.Error()
	}
	c.JSON(http.StatusOK, gin.H{
		"section":  result.Section,
		"rendered": result.Rendered,
		"skipped":  result.Skipped,
		"failures": failures,
		"stale":    result.Stale,
	})
}

func (s *Server) respondError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(httpStatus(err), gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func httpStatus(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeUploadInFlight:
		return http.StatusConflict
	case errors.CodeTransportError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
