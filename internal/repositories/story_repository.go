package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/danielpillwein/storyteller/internal/models"
)

// ErrStoryNotFound is returned by update/delete operations when no story
// with the given ID exists. Store I/O failures are returned as-is.
var ErrStoryNotFound = errors.New("story not found")

// StoryRepository persists the story metadata collection.
type StoryRepository interface {
	LoadAll() ([]models.Story, error)
	Append(story models.Story) error
	UpdateByID(id string, mutate func(*models.Story)) (models.Story, error)
	DeleteByID(id string) (models.Story, error)
}

// FileStoryRepository stores all stories as a single JSON array on disk.
// Every mutation is a full read-modify-write of the document, serialized by
// an in-process mutex. The on-disk order is insertion order; consumers sort
// by timestamp for presentation.
type FileStoryRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileStoryRepository creates a story repository backed by the file at
// path, initializing it with an empty collection when it does not exist.
func NewFileStoryRepository(path string) (*FileStoryRepository, error) {
	r := &FileStoryRepository{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := r.persist([]models.Story{}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadAll returns all stories in on-disk order.
func (r *FileStoryRepository) LoadAll() ([]models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Append adds a story to the end of the collection.
func (r *FileStoryRepository) Append(story models.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stories, err := r.load()
	if err != nil {
		return err
	}
	return r.persist(append(stories, story))
}

// UpdateByID applies mutate to the story with the given ID and persists the
// result. Returns ErrStoryNotFound when the ID is unknown.
func (r *FileStoryRepository) UpdateByID(id string, mutate func(*models.Story)) (models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stories, err := r.load()
	if err != nil {
		return models.Story{}, err
	}

	for i := range stories {
		if stories[i].ID == id {
			mutate(&stories[i])
			if err := r.persist(stories); err != nil {
				return models.Story{}, err
			}
			return stories[i], nil
		}
	}
	return models.Story{}, ErrStoryNotFound
}

// DeleteByID removes the story with the given ID and returns it.
// Returns ErrStoryNotFound when the ID is unknown.
func (r *FileStoryRepository) DeleteByID(id string) (models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stories, err := r.load()
	if err != nil {
		return models.Story{}, err
	}

	for i := range stories {
		if stories[i].ID == id {
			removed := stories[i]
			if err := r.persist(append(stories[:i], stories[i+1:]...)); err != nil {
				return models.Story{}, err
			}
			return removed, nil
		}
	}
	return models.Story{}, ErrStoryNotFound
}

func (r *FileStoryRepository) load() ([]models.Story, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read stories: %w", err)
	}

	var stories []models.Story
	if err := json.Unmarshal(data, &stories); err != nil {
		return nil, fmt.Errorf("parse stories: %w", err)
	}
	return stories, nil
}

// persist writes the whole collection through a temp file and atomic rename,
// so readers never observe a partially written document.
func (r *FileStoryRepository) persist(stories []models.Story) error {
	data, err := json.MarshalIndent(stories, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal stories: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write stories: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace stories: %w", err)
	}
	return nil
}
