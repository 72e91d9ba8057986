package ui

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"csvdash/domain/core"
	"csvdash/internal/errors"
	"csvdash/internal/render"
)

var validMimeTypes = []string{
	"text/csv",
	"application/csv",
	"application/vnd.ms-excel", // browsers on Windows label .csv this way
	"text/plain",
	"application/octet-stream",
}

// handleUpload forwards the posted CSV to the analysis service and loads the result.
// Only one upload runs at a time; a concurrent one is refused with 409.
func (s *Server) handleUpload(c *gin.Context) {
	if !s.uploadGate.TryAcquire(1) {
		s.log.Warn("upload refused, another one is in flight")
		s.respondError(c, errors.UploadInFlight())
		return
	}
	defer s.uploadGate.Release(1)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		s.log.Warn("upload without file: %v", err)
		s.respondError(c, errors.InvalidInput("no file uploaded"))
		return
	}
	defer file.Close()

	maxBytes := int64(s.opts.MaxUploadMB) * 1024 * 1024
	if header.Size > maxBytes {
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("file size (%.1f MB) exceeds the %d MB limit",
			float64(header.Size)/(1024*1024), s.opts.MaxUploadMB)))
		return
	}

	filename := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		s.respondError(c, errors.InvalidInput("only CSV (.csv) files are allowed"))
		return
	}
	if contentType := header.Header.Get("Content-Type"); !knownMimeType(contentType) {
		// Some systems label CSV files oddly, so this is only logged.
		s.log.Warn("unexpected MIME type %q for %s", contentType, filename)
	}

	s.mu.Lock()
	seq := s.engine.BeginUpload()
	s.status, s.failed = StatusUploading, false
	s.mu.Unlock()
	uploadID := core.NewUploadID()
	s.log.Info("upload #%d [%s] started for %s", seq, uploadID, filename)

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.UploadTimeout)
	defer cancel()
	payload, err := s.uploader.Upload(ctx, filename, file)
	if err != nil {
		s.mu.Lock()
		s.status, s.failed = StatusFailed, true
		s.version++
		s.mu.Unlock()
		s.log.Error("upload #%d [%s] (%s) failed: %v", seq, uploadID, filename, err)
		if wantsJSON(c) {
			s.respondError(c, err)
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	s.mu.Lock()
	result, err := s.engine.Handle(render.PayloadLoaded{Seq: seq, Payload: payload})
	if err == nil && !result.Stale {
		s.status, s.failed = StatusProcessed, false
		s.filename = filename
	}
	s.version++
	s.mu.Unlock()
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.log.Info("upload #%d [%s] loaded (stale=%t)", seq, uploadID, result.Stale)
	s.logFailures(result)
	s.respondDone(c, result)
}

func knownMimeType(contentType string) bool {
	for _, m := range validMimeTypes {
		if strings.HasPrefix(contentType, m) {
			return true
		}
	}
	return strings.Contains(contentType, "csv")
}
