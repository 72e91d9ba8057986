package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"csvdash/internal"
	"csvdash/internal/config"
	"csvdash/internal/container"
	"csvdash/internal/demo"
	"csvdash/ui"
)

func main() {
	os.Exit(run())
}

// run starts the dashboard and returns the process exit code
func run() int {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Logging.Level))
	internal.DefaultLogger = logger

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Printf("Failed to create application container: %v", err)
		return 1
	}

	gin.SetMode(appConfig.Server.GinMode)

	opts := ui.Options{
		MaxUploadMB:   appConfig.Server.MaxUploadMB,
		UploadTimeout: appConfig.API.UploadTimeout,
	}
	if appConfig.Dashboard.DemoMode {
		opts.Demo = demo.Payload()
	}

	server, err := ui.NewServer(appContainer.Engine, appContainer.Canvas, appContainer.Uploader,
		appContainer.Exporters, opts, logger)
	if err != nil {
		log.Printf("Failed to initialize server: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start releases the live charts itself
	logger.Info("uploading CSV files to %s", appContainer.Uploader.URL())
	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil {
		logger.Error("server stopped: %v", err)
		return 1
	}
	return 0
}
