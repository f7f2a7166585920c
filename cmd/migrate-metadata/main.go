// Command migrate-metadata consolidates the legacy per-file metadata layout
// (metadata/{id}_{category}.json, one document per story) into the single
// stories.json document the server reads. It is a one-time upgrade step and
// is never invoked by the server; the legacy files are left in place.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danielpillwein/storyteller/internal/models"
	"github.com/danielpillwein/storyteller/internal/repositories"
)

// legacyMetadata is the per-file document format of the pre-consolidation
// server. Duration was not recorded back then and defaults to zero.
type legacyMetadata struct {
	ID        string  `json:"id"`
	Author    string  `json:"author"`
	Timestamp string  `json:"timestamp"`
	Category  string  `json:"category"`
	Duration  float64 `json:"duration"`
}

func main() {
	dataDir := flag.String("data", "stories", "data directory containing metadata/, audios/ and stories.json")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(*dataDir); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
}

func run(dataDir string) error {
	metadataDir := filepath.Join(dataDir, "metadata")
	audiosDir := filepath.Join(dataDir, "audios")

	entries, err := os.ReadDir(metadataDir)
	if err != nil {
		return fmt.Errorf("read legacy metadata directory: %w", err)
	}

	repo, err := repositories.NewFileStoryRepository(filepath.Join(dataDir, "stories.json"))
	if err != nil {
		return fmt.Errorf("open stories collection: %w", err)
	}

	existing, err := repo.LoadAll()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[s.ID] = true
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	migrated := 0
	for _, name := range names {
		doc, err := readLegacy(filepath.Join(metadataDir, name))
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("skipping unreadable legacy document")
			continue
		}
		if known[doc.ID] {
			log.Info().Str("id", doc.ID).Msg("already migrated, skipping")
			continue
		}
		if !models.ValidCategory(doc.Category) {
			log.Warn().Str("id", doc.ID).Str("category", doc.Category).Msg("skipping unknown category")
			continue
		}

		audioFile := fmt.Sprintf("%s_%s.webm", doc.ID, doc.Category)
		if _, err := os.Stat(filepath.Join(audiosDir, audioFile)); err != nil {
			log.Warn().Str("id", doc.ID).Str("file", audioFile).Msg("skipping record without audio blob")
			continue
		}

		ts, err := time.Parse(time.RFC3339, doc.Timestamp)
		if err != nil {
			log.Warn().Err(err).Str("id", doc.ID).Msg("unparseable timestamp, using file order")
			ts = time.Now().UTC()
		}

		story := models.Story{
			ID:         doc.ID,
			Author:     doc.Author,
			Timestamp:  ts,
			RecordedBy: doc.Category,
			Duration:   doc.Duration,
			Liked:      false,
			AudioPath:  path.Join("audios", audioFile),
		}
		if err := repo.Append(story); err != nil {
			return fmt.Errorf("append story %s: %w", doc.ID, err)
		}
		known[doc.ID] = true
		migrated++
	}

	log.Info().Int("migrated", migrated).Int("total", len(names)).Msg("migration complete")
	return nil
}

func readLegacy(path string) (legacyMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return legacyMetadata{}, err
	}
	var doc legacyMetadata
	if err := json.Unmarshal(data, &doc); err != nil {
		return legacyMetadata{}, err
	}
	if doc.ID == "" {
		return legacyMetadata{}, fmt.Errorf("document %s has no id", path)
	}
	return doc, nil
}
