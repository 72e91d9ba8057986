package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdash/adapters/charts"
	"csvdash/adapters/excel"
	"csvdash/adapters/pdf"
	"csvdash/domain/analysis"
	"csvdash/domain/dashboard"
	"csvdash/internal"
	"csvdash/internal/demo"
	"csvdash/internal/errors"
	"csvdash/internal/render"
	"csvdash/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var quiet = internal.NewLoggerTo(io.Discard, internal.LogLevelError)

// fakeUploader returns a canned payload or error; when gate is set it blocks until the
// gate is closed so tests can hold an upload in flight.
type fakeUploader struct {
	payload *analysis.Payload
	err     error
	entered chan struct{}
	gate    chan struct{}

	mu    sync.Mutex
	names []string
}

func (f *fakeUploader) Upload(ctx context.Context, filename string, file io.Reader) (*analysis.Payload, error) {
	f.mu.Lock()
	f.names = append(f.names, filename)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.payload, f.err
}

func uploadedPayload() *analysis.Payload {
	return &analysis.Payload{
		RowCount:            50,
		NullsByColumn:       &analysis.ColumnCounts{Labels: []string{"id", "city"}, Counts: []float64{0, 10}},
		NumericStats:        &analysis.NumericStats{Labels: []string{"id"}, Means: []float64{25.5}},
		DuplicatesByColumn:  &analysis.DuplicateColumns{Labels: []string{"city"}, Counts: []float64{45}, Percent: []float64{90}},
		DuplicateRowSummary: &analysis.DuplicateRowSummary{DuplicateCount: 2},
	}
}

func newTestServer(t *testing.T, uploader ports.UploadTransport, withDemo bool) *Server {
	t.Helper()
	return newLoggedTestServer(t, uploader, withDemo, quiet)
}

func newLoggedTestServer(t *testing.T, uploader ports.UploadTransport, withDemo bool, logger *internal.Logger) *Server {
	t.Helper()
	canvas := charts.NewCanvas(dashboard.Targets...)
	lib := charts.NewLibrary(canvas, 300, 200, quiet)
	engine := render.NewEngine(lib, canvas, render.Options{Logger: quiet})
	opts := Options{MaxUploadMB: 1, Now: func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }}
	if withDemo {
		opts.Demo = demo.Payload()
	}
	exporters := map[string]ports.ReportExporter{"xlsx": excel.NewExporter(), "pdf": pdf.NewExporter()}
	s, err := NewServer(engine, canvas, uploader, exporters, opts, logger)
	require.NoError(t, err)
	return s
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, _ = part.Write([]byte(content))
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename string) *http.Request {
	body, ct := multipartBody(t, filename, "id,city\n1,x\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	return req
}

func state(t *testing.T, s *Server) map[string]interface{} {
	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestIndexShowsDemoHome(t *testing.T) {
	s := newTestServer(t, &fakeUploader{}, true)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="section-inicio"`)
	assert.NotContains(t, body, `id="section-nulos"`)
	assert.Contains(t, body, "<strong>Rows:</strong>")

	for _, target := range dashboard.Targets {
		rec := do(s, httptest.NewRequest(http.MethodGet, "/charts/"+string(target), nil))
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	}
}

func TestIndexWithoutPayload(t *testing.T) {
	s := newTestServer(t, &fakeUploader{}, false)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload a CSV file")

	rec = do(s, httptest.NewRequest(http.MethodGet, "/charts/nulosChart", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSectionNavigation(t *testing.T) {
	s := newTestServer(t, &fakeUploader{}, true)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/section/estadisticas", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	page := do(s, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	assert.Contains(t, page, `id="section-estadisticas"`)
	assert.NotContains(t, page, `id="section-inicio"`)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/section/nowhere", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModeToggle(t *testing.T) {
	s := newTestServer(t, &fakeUploader{}, true)

	form := url.Values{"selector": {"nulls-mode"}, "mode": {"percent"}}
	req := httptest.NewRequest(http.MethodPost, "/mode", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []interface{}{"nulosChart"}, out["rendered"])

	modes := state(t, s)["state"].(map[string]interface{})["modes"].(map[string]interface{})
	assert.Equal(t, "percent", modes["nulls-mode"])
	assert.Equal(t, "count", modes["dupes-mode"])
}

func TestModeToggleRejectsBadInput(t *testing.T) {
	s := newTestServer(t, &fakeUploader{}, true)
	for _, form := range []url.Values{
		{"selector": {"nulls-mode"}, "mode": {"ratio"}},
		{"selector": {"means-mode"}, "mode": {"count"}},
	} {
		req := httptest.NewRequest(http.MethodPost, "/mode", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.Equal(t, http.StatusBadRequest, do(s, req).Code)
	}
}

func TestUploadLoadsPayload(t *testing.T) {
	uploader := &fakeUploader{payload: uploadedPayload()}
	s := newTestServer(t, uploader, true)

	rec := do(s, uploadRequest(t, "cities.csv"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"cities.csv"}, uploader.names)

	st := state(t, s)
	assert.Equal(t, StatusProcessed, st["status"])
	assert.Equal(t, "cities.csv", st["filename"])
	assert.Equal(t, "nulos", st["state"].(map[string]interface{})["section"])

	page := do(s, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	assert.Contains(t, page, `id="section-nulos"`)
	assert.Contains(t, page, StatusProcessed)
}

func TestUploadFailureShowsStatus(t *testing.T) {
	uploader := &fakeUploader{err: errors.TransportError(500, nil)}
	s := newTestServer(t, uploader, true)

	rec := do(s, uploadRequest(t, "broken.csv"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	st := state(t, s)
	assert.Equal(t, StatusFailed, st["status"])
	assert.Equal(t, true, st["failed"])
	assert.Equal(t, "demo", st["filename"])

	req := uploadRequest(t, "broken.csv")
	req.Header.Set("Accept", "application/json")
	assert.Equal(t, http.StatusBadGateway, do(s, req).Code)
}

func TestUploadValidation(t *testing.T) {
	s := newTestServer(t, &fakeUploader{payload: uploadedPayload()}, false)

	assert.Equal(t, http.StatusBadRequest, do(s, uploadRequest(t, "data.xlsx")).Code)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(""))
	assert.Equal(t, http.StatusBadRequest, do(s, req).Code)

	big, ct := multipartBody(t, "big.csv", strings.Repeat("x", 2*1024*1024))
	req = httptest.NewRequest(http.MethodPost, "/upload", big)
	req.Header.Set("Content-Type", ct)
	assert.Equal(t, http.StatusBadRequest, do(s, req).Code)
}

func TestConcurrentUploadIsRefused(t *testing.T) {
	uploader := &fakeUploader{
		payload: uploadedPayload(),
		entered: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
	s := newTestServer(t, uploader, false)

	req := uploadRequest(t, "one.csv")
	first := make(chan int, 1)
	go func() {
		first <- do(s, req).Code
	}()
	<-uploader.entered

	assert.Equal(t, http.StatusConflict, do(s, uploadRequest(t, "two.csv")).Code)

	close(uploader.gate)
	assert.Equal(t, http.StatusSeeOther, <-first)
	assert.Equal(t, "one.csv", state(t, s)["filename"])
}

func TestExport(t *testing.T) {
	s := newTestServer(t, &fakeUploader{}, false)
	assert.Equal(t, http.StatusNotFound, do(s, httptest.NewRequest(http.MethodGet, "/export/xlsx", nil)).Code)

	s = newTestServer(t, &fakeUploader{}, true)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/export/xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	rec = do(s, httptest.NewRequest(http.MethodGet, "/export/pdf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	assert.Equal(t, http.StatusNotFound, do(s, httptest.NewRequest(http.MethodGet, "/export/docx", nil)).Code)
}

func TestRequestIDAndHealth(t *testing.T) {
	s := newTestServer(t, &fakeUploader{}, false)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	const id = "0191d3a4-6c2e-7c59-8f3e-2b1d4c5e6f70"
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, id)
	assert.Equal(t, id, do(s, req).Header().Get(requestIDHeader))
}

func TestUploadLogsCarrySequenceAndID(t *testing.T) {
	var logs bytes.Buffer
	logger := internal.NewLoggerTo(&logs, internal.LogLevelInfo)
	s := newLoggedTestServer(t, &fakeUploader{payload: uploadedPayload()}, false, logger)

	require.Equal(t, http.StatusSeeOther, do(s, uploadRequest(t, "cities.csv")).Code)

	out := logs.String()
	assert.Regexp(t, `upload #1 \[[0-9a-f-]{36}\] started for cities\.csv`, out)
	assert.Regexp(t, `upload #1 \[[0-9a-f-]{36}\] loaded \(stale=false\)`, out)
}
