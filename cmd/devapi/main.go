// Command devapi stands in for the analysis service during development. It accepts CSV
// uploads on POST /api/upload-csv/ and answers with the demo payload.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"csvdash/adapters/upload"
	"csvdash/domain/analysis"
	"csvdash/internal"
	"csvdash/internal/demo"
)

type stubAPI struct {
	payload []byte
	delay   time.Duration
	log     *internal.Logger
}

func newRouter(api *stubAPI) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload-csv/", api.handleUpload)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (a *stubAPI) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile(upload.FormField)
	if err != nil {
		http.Error(w, `{"error":"no file uploaded"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		http.Error(w, `{"error":"only CSV files are accepted"}`, http.StatusUnsupportedMediaType)
		return
	}
	a.log.Info("received %s (%d bytes)", header.Filename, header.Size)

	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(a.payload)
}

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	delay := flag.Duration("delay", 0, "artificial latency per upload")
	flag.Parse()

	logger := internal.NewDefaultLogger().With("DevAPI")
	payload, err := analysis.Encode(demo.Payload())
	if err != nil {
		logger.Error("encoding demo payload: %v", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: newRouter(&stubAPI{payload: payload, delay: *delay, log: logger}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("analysis stub listening on %s/api/upload-csv/", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed: %v", err)
		os.Exit(1)
	}
}
