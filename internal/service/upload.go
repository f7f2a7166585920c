// Package service orchestrates the upload pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/danielpillwein/storyteller/internal/models"
	"github.com/danielpillwein/storyteller/internal/repositories"
	"github.com/danielpillwein/storyteller/internal/storage"
)

// Validation errors, each mapped to its own user-facing message by the
// upload handler. They are returned before any ID is allocated or any store
// is touched.
var (
	ErrAuthorMissing   = errors.New("author missing")
	ErrInvalidCategory = errors.New("invalid category")
	ErrFileMissing     = errors.New("audio file missing")
)

var validate = validator.New()

// DurationFixer corrects container duration metadata of the file at path in
// place and returns the measured duration in seconds.
type DurationFixer interface {
	Fix(ctx context.Context, path string) (float64, error)
}

// UploadService runs one upload as a sequence of steps: validate, allocate
// an ID, move the spooled file into place, fix the duration metadata and
// append the story record.
type UploadService struct {
	counter   repositories.CounterRepository
	stories   repositories.StoryRepository
	fixer     DurationFixer
	audiosDir string
}

// NewUploadService creates an UploadService writing audio blobs to audiosDir.
func NewUploadService(counter repositories.CounterRepository, stories repositories.StoryRepository, fixer DurationFixer, audiosDir string) *UploadService {
	return &UploadService{
		counter:   counter,
		stories:   stories,
		fixer:     fixer,
		audiosDir: audiosDir,
	}
}

// UploadInput carries one upload request into the pipeline.
type UploadInput struct {
	Author   string
	Category string
	TempPath string  // spooled audio file; empty when no file arrived
	Duration float64 // client-side duration estimate in seconds
}

// Upload runs the pipeline and returns the created story.
//
// Validation failures clean up the spooled file and leave the counter
// untouched. A failed relocation burns the allocated ID and fails the
// upload. A failed duration fix-up keeps the client estimate and proceeds.
// A crash between relocation and metadata append leaves an orphaned audio
// file with a burned ID; that inconsistency is accepted, not rolled back.
func (s *UploadService) Upload(ctx context.Context, in UploadInput) (models.Story, error) {
	author := strings.TrimSpace(in.Author)
	if err := s.validateInput(author, in.Category); err != nil {
		s.discardTemp(in.TempPath)
		return models.Story{}, err
	}
	if in.TempPath == "" {
		return models.Story{}, ErrFileMissing
	}

	id, err := s.counter.Allocate()
	if err != nil {
		s.discardTemp(in.TempPath)
		return models.Story{}, err
	}
	storyID := repositories.FormatID(id)

	filename := fmt.Sprintf("%s_%s.webm", storyID, in.Category)
	finalPath := filepath.Join(s.audiosDir, filename)

	if err := storage.Relocate(in.TempPath, finalPath); err != nil {
		// The allocated ID stays burned; IDs are never reused.
		s.discardTemp(in.TempPath)
		return models.Story{}, fmt.Errorf("relocate upload: %w", err)
	}

	duration := in.Duration
	if measured, err := s.fixer.Fix(ctx, finalPath); err != nil {
		log.Warn().Err(err).Str("path", finalPath).Msg("duration fix-up failed, keeping client estimate")
	} else {
		duration = measured
	}
	if duration < 0 {
		duration = 0
	}

	story := models.Story{
		ID:         storyID,
		Author:     author,
		Timestamp:  time.Now().UTC(),
		RecordedBy: in.Category,
		Duration:   duration,
		Liked:      false,
		AudioPath:  path.Join("audios", filename),
	}
	if err := s.stories.Append(story); err != nil {
		// The audio file stays in place; re-adopting such orphans is a
		// migration concern, not an upload concern.
		return models.Story{}, fmt.Errorf("append story: %w", err)
	}

	log.Info().Str("id", storyID).Str("path", finalPath).Msg("saved audio story")
	return story, nil
}

// validateInput checks author and category against the upload request
// schema and maps field failures onto the validation sentinels.
func (s *UploadService) validateInput(author, category string) error {
	req := models.UploadRequest{Author: author, Category: category}
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			switch fe.Field() {
			case "Author":
				return ErrAuthorMissing
			case "Category":
				return ErrInvalidCategory
			}
		}
	}
	return err
}

func (s *UploadService) discardTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", path).Msg("failed to clean up temp file")
	}
}
