package router

import (
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/danielpillwein/storyteller/internal/handlers"
	"github.com/danielpillwein/storyteller/internal/middleware"
	"github.com/danielpillwein/storyteller/internal/repositories"
	"github.com/danielpillwein/storyteller/internal/service"
	"github.com/danielpillwein/storyteller/internal/transcode"
	"github.com/danielpillwein/storyteller/pkg/config"
)

// SetupMiddleware configures global Echo middleware.
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.Gzip())
	e.Use(eMiddleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB)))
}

// SetupRoutes prepares the data directories, builds all repositories,
// services and handlers, and wires the application routes.
func SetupRoutes(e *echo.Echo, cfg *config.Config) error {
	for _, dir := range []string{cfg.DataDir, cfg.AudiosDir(), cfg.TempDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	counterRepo, err := repositories.NewFileCounterRepository(cfg.CounterFile())
	if err != nil {
		return fmt.Errorf("init counter repository: %w", err)
	}
	storyRepo, err := repositories.NewFileStoryRepository(cfg.StoriesFile())
	if err != nil {
		return fmt.Errorf("init story repository: %w", err)
	}

	fixer := transcode.New(cfg.FFmpegPath, cfg.FFprobePath, cfg.TranscodeTimeout)
	uploadService := service.NewUploadService(counterRepo, storyRepo, fixer, cfg.AudiosDir())

	// Health check - always accessible
	e.GET("/api/health", handlers.HealthCheck)

	// Upload routes
	api := e.Group("/api")
	uploadHandler := handlers.NewUploadHandler(uploadService, cfg.TempDir())
	uploadHandler.RegisterUploadRoutes(api)
	log.Info().Msg("upload routes configured")

	// Admin routes (shared-secret protected)
	admin := e.Group("/api/admin")
	admin.Use(middleware.AdminAuthMiddleware(cfg.AdminPassword))
	adminHandler := handlers.NewAdminHandler(storyRepo, cfg.DataDir)
	adminHandler.RegisterAdminRoutes(admin)
	log.Info().Msg("admin routes configured")

	// Audio blobs under a fixed public prefix; echo's static handler
	// rejects path traversal outside the directory.
	e.Static("/audios", cfg.AudiosDir())

	// Static frontend, when present
	if cfg.FrontendDir != "" {
		e.Static("/", cfg.FrontendDir)
	}

	return nil
}
