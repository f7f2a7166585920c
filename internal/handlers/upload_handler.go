package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/danielpillwein/storyteller/internal/models"
	"github.com/danielpillwein/storyteller/internal/service"
)

// Messages shown to the uploader. The app's audience is German-speaking.
const (
	msgAuthorMissing   = "Bitte gib deinen Namen an."
	msgInvalidCategory = "Ungültige Kategorie. Bitte wähle: nina, dani oder beide."
	msgFileMissing     = "Keine Audiodatei empfangen."
	msgInvalidRequest  = "Ungültige Anfrage. Bitte überprüfe deine Eingaben."
	msgUploadFailed    = "Fehler beim Speichern der Story. Bitte versuche es erneut."
	msgUploadSaved     = "Story erfolgreich gespeichert!"
)

// UploadHandler handles story upload requests.
type UploadHandler struct {
	uploads *service.UploadService
	tempDir string
}

// NewUploadHandler creates a new UploadHandler spooling uploads to tempDir.
func NewUploadHandler(uploads *service.UploadService, tempDir string) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		tempDir: tempDir,
	}
}

// RegisterUploadRoutes registers upload-related routes.
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/upload", h.Upload)
}

// Upload handles one multipart story upload.
func (h *UploadHandler) Upload(c echo.Context) error {
	var req models.UploadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidRequest})
	}

	tempPath := ""
	if fh, err := c.FormFile("audio"); err == nil {
		spooled, err := h.spool(fh)
		if err != nil {
			log.Error().Err(err).Msg("failed to spool uploaded audio")
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgUploadFailed})
		}
		tempPath = spooled
	}

	story, err := h.uploads.Upload(c.Request().Context(), service.UploadInput{
		Author:   req.Author,
		Category: req.Category,
		TempPath: tempPath,
		Duration: req.Duration,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthorMissing):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgAuthorMissing})
		case errors.Is(err, service.ErrInvalidCategory):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidCategory})
		case errors.Is(err, service.ErrFileMissing):
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgFileMissing})
		}
		log.Error().Err(err).Str("author", req.Author).Str("category", req.Category).Msg("upload failed")
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgUploadFailed})
	}

	return c.JSON(http.StatusOK, models.UploadResponse{
		Success:  true,
		Message:  msgUploadSaved,
		StoryID:  story.ID,
		Category: story.RecordedBy,
	})
}

// spool writes the uploaded file into the temp directory under a unique
// name and returns its path.
func (h *UploadHandler) spool(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tempPath := filepath.Join(h.tempDir, fmt.Sprintf("temp_%s.webm", uuid.NewString()))
	dst, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tempPath, nil
}
