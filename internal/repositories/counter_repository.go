package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrCounterCorrupt is returned when the counter file cannot be read or
// parsed. Allocation never guesses a value: handing out a duplicate ID is
// worse than failing the upload.
var ErrCounterCorrupt = errors.New("counter file corrupt")

// CounterRepository hands out monotonically increasing story IDs.
// IDs are never reused, even after a story is deleted.
type CounterRepository interface {
	Allocate() (int, error)
}

// FileCounterRepository persists the counter as a small JSON document
// ({"nextId": N}). All read-increment-write cycles are serialized by an
// in-process mutex; multi-process deployments would need file locking.
type FileCounterRepository struct {
	mu   sync.Mutex
	path string
}

type counterDoc struct {
	NextID int `json:"nextId"`
}

// NewFileCounterRepository creates a counter repository backed by the file
// at path, initializing it with nextId=1 when it does not exist yet.
func NewFileCounterRepository(path string) (*FileCounterRepository, error) {
	r := &FileCounterRepository{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := r.write(counterDoc{NextID: 1}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Allocate returns the next ID and persists the increment before returning,
// so no two callers can ever observe the same value.
func (r *FileCounterRepository) Allocate() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCounterCorrupt, err)
	}

	var doc counterDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCounterCorrupt, err)
	}
	if doc.NextID < 1 {
		return 0, fmt.Errorf("%w: nextId is %d", ErrCounterCorrupt, doc.NextID)
	}

	id := doc.NextID
	if err := r.write(counterDoc{NextID: id + 1}); err != nil {
		return 0, err
	}
	return id, nil
}

// write persists the counter document through a temp file and atomic rename.
func (r *FileCounterRepository) write(doc counterDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal counter: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write counter: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace counter: %w", err)
	}
	return nil
}

// FormatID renders an allocated counter value as the public story ID.
// The width is fixed at three digits and widens naturally past 999.
func FormatID(id int) string {
	return fmt.Sprintf("%03d", id)
}
