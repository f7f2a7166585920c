package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "stories", cfg.DataDir)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "ffprobe", cfg.FFprobePath)
	assert.Equal(t, 30*time.Second, cfg.TranscodeTimeout)
	assert.Equal(t, 50, cfg.MaxUploadMB)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATA_DIR", "/var/lib/storyteller")
	t.Setenv("TRANSCODE_TIMEOUT", "10s")
	t.Setenv("MAX_UPLOAD_MB", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/var/lib/storyteller", cfg.DataDir)
	assert.Equal(t, 10*time.Second, cfg.TranscodeTimeout)
	assert.Equal(t, 10, cfg.MaxUploadMB)
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("TRANSCODE_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRANSCODE_TIMEOUT")
}

func TestLoadInvalidUploadLimit(t *testing.T) {
	t.Setenv("MAX_UPLOAD_MB", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_UPLOAD_MB")
}

func TestLoadProductionRequiresPassword(t *testing.T) {
	t.Setenv("ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")

	t.Setenv("ADMIN_PASSWORD", "geheim")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "geheim", cfg.AdminPassword)
}

func TestDerivedPaths(t *testing.T) {
	t.Setenv("DATA_DIR", "data")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "audios"), cfg.AudiosDir())
	assert.Equal(t, filepath.Join("data", "temp"), cfg.TempDir())
	assert.Equal(t, filepath.Join("data", "counter.json"), cfg.CounterFile())
	assert.Equal(t, filepath.Join("data", "stories.json"), cfg.StoriesFile())
}
