package ui

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"csvdash/domain/core"
)

const requestIDHeader = "X-Request-ID"

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery(), RequestID())

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		s.log.Error("static filesystem unavailable: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// RequestID propagates a caller supplied X-Request-ID or assigns a fresh one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := core.ParseRequestID(c.GetHeader(requestIDHeader))
		if err != nil {
			id = core.NewRequestID()
		}
		c.Set("request_id", id.String())
		c.Header(requestIDHeader, id.String())
		c.Next()
	}
}
