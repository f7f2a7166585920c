package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danielpillwein/storyteller/internal/router"
	"github.com/danielpillwein/storyteller/pkg/config"
)

func main() {
	// .env is optional; deployments usually set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e, cfg)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to set up routes")
	}

	log.Info().
		Str("port", cfg.Port).
		Str("dataDir", cfg.DataDir).
		Msg("story recorder server started")

	// Start server
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
