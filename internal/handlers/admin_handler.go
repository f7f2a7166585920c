package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/danielpillwein/storyteller/internal/models"
	"github.com/danielpillwein/storyteller/internal/query"
	"github.com/danielpillwein/storyteller/internal/repositories"
)

// AdminHandler handles the admin story listing and mutations.
type AdminHandler struct {
	stories repositories.StoryRepository
	dataDir string
}

// NewAdminHandler creates a new AdminHandler. dataDir is the root the
// relative audio paths of stored records resolve against.
func NewAdminHandler(stories repositories.StoryRepository, dataDir string) *AdminHandler {
	return &AdminHandler{
		stories: stories,
		dataDir: dataDir,
	}
}

// RegisterAdminRoutes registers admin-related routes.
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/stories", h.ListStories)
	g.GET("/stories/counts", h.StoryCounts)
	g.POST("/stories/:id/like", h.ToggleLike)
	g.DELETE("/stories/:id", h.DeleteStory)
}

// ListStories returns stories sorted by timestamp descending. Without query
// parameters the full collection is returned; for_whom, by_whom (repeatable)
// and only_liked narrow the view.
func (h *AdminHandler) ListStories(c echo.Context) error {
	stories, err := h.stories.LoadAll()
	if err != nil {
		log.Error().Err(err).Msg("failed to load stories")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load stories")
	}
	return c.JSON(http.StatusOK, query.Apply(stories, specFromQuery(c)))
}

// StoryCounts returns facet counts for the filter UI: per-category counts
// with the author/liked filters applied, and per-author counts with the
// category/liked filters applied.
func (h *AdminHandler) StoryCounts(c echo.Context) error {
	stories, err := h.stories.LoadAll()
	if err != nil {
		log.Error().Err(err).Msg("failed to load stories")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load stories")
	}

	spec := specFromQuery(c)
	return c.JSON(http.StatusOK, echo.Map{
		"categories": query.CategoryCounts(stories, spec),
		"authors":    query.AuthorCounts(stories, spec),
	})
}

// ToggleLike flips the liked flag of a story and returns the updated record.
func (h *AdminHandler) ToggleLike(c echo.Context) error {
	id := c.Param("id")

	updated, err := h.stories.UpdateByID(id, func(s *models.Story) {
		s.Liked = !s.Liked
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStoryNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		log.Error().Err(err).Str("id", id).Msg("failed to toggle like")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update story")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteStory removes a story record and its backing audio file.
func (h *AdminHandler) DeleteStory(c echo.Context) error {
	id := c.Param("id")

	removed, err := h.stories.DeleteByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrStoryNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		log.Error().Err(err).Str("id", id).Msg("failed to delete story")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete story")
	}

	audioPath := filepath.Join(h.dataDir, filepath.FromSlash(removed.AudioPath))
	if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
		// The record is already gone; log the orphaned blob.
		log.Warn().Err(err).Str("path", audioPath).Msg("failed to delete audio file")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// specFromQuery builds a filter spec from the request's query parameters.
func specFromQuery(c echo.Context) query.Spec {
	spec := query.Spec{
		ForWhom:   c.QueryParam("for_whom"),
		ByWhom:    c.QueryParams()["by_whom"],
		OnlyLiked: c.QueryParam("only_liked") == "true",
	}
	if spec.ForWhom == "" {
		spec.ForWhom = query.All
	}
	return spec
}
