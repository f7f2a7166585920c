package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port             string
	Env              string
	DataDir          string
	FrontendDir      string
	AdminPassword    string
	FFmpegPath       string
	FFprobePath      string
	TranscodeTimeout time.Duration
	MaxUploadMB      int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("ENV", "development"),
		DataDir:       getEnv("DATA_DIR", "stories"),
		FrontendDir:   getEnv("FRONTEND_DIR", "frontend"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		FFmpegPath:    getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:   getEnv("FFPROBE_PATH", "ffprobe"),
	}

	timeout, err := time.ParseDuration(getEnv("TRANSCODE_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSCODE_TIMEOUT: %w", err)
	}
	cfg.TranscodeTimeout = timeout

	maxUpload, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "50"))
	if err != nil || maxUpload < 1 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB %q", getEnv("MAX_UPLOAD_MB", "50"))
	}
	cfg.MaxUploadMB = maxUpload

	if cfg.Env != "development" && cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD must be set when ENV=%s", cfg.Env)
	}

	return cfg, nil
}

// AudiosDir is where the final audio blobs live.
func (c *Config) AudiosDir() string {
	return filepath.Join(c.DataDir, "audios")
}

// TempDir is the spool directory for in-flight uploads.
func (c *Config) TempDir() string {
	return filepath.Join(c.DataDir, "temp")
}

// CounterFile holds the next story ID.
func (c *Config) CounterFile() string {
	return filepath.Join(c.DataDir, "counter.json")
}

// StoriesFile holds the consolidated story metadata collection.
func (c *Config) StoriesFile() string {
	return filepath.Join(c.DataDir, "stories.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
