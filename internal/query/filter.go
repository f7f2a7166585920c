// Package query implements the admin filter engine: pure functions from a
// record set and a filter spec to a filtered view and facet counts.
package query

import (
	"sort"

	"github.com/danielpillwein/storyteller/internal/models"
)

// All selects every category in a Spec.
const All = "all"

// UnknownAuthor is the display name stories without an author are grouped
// under, matching the admin UI.
const UnknownAuthor = "Unbekannt"

// Spec describes one filter selection. The three predicates are ANDed;
// ByWhom is an OR across the selected author names, empty meaning "all".
type Spec struct {
	ForWhom   string
	ByWhom    []string
	OnlyLiked bool
}

func (s Spec) matchCategory(story models.Story) bool {
	return s.ForWhom == "" || s.ForWhom == All || story.RecordedBy == s.ForWhom
}

func (s Spec) matchAuthor(story models.Story) bool {
	if len(s.ByWhom) == 0 {
		return true
	}
	name := displayAuthor(story)
	for _, a := range s.ByWhom {
		if a == name {
			return true
		}
	}
	return false
}

func (s Spec) matchLiked(story models.Story) bool {
	return !s.OnlyLiked || story.Liked
}

func (s Spec) matches(story models.Story) bool {
	return s.matchCategory(story) && s.matchAuthor(story) && s.matchLiked(story)
}

// Apply returns the stories matching spec, sorted by timestamp descending.
// The input slice is not modified.
func Apply(stories []models.Story, spec Spec) []models.Story {
	out := make([]models.Story, 0, len(stories))
	for _, story := range stories {
		if spec.matches(story) {
			out = append(out, story)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// CategoryCounts returns, per category, how many stories would match if
// that category were the selected one, keeping the author and liked filters
// of spec applied. Every known category is present in the result.
func CategoryCounts(stories []models.Story, spec Spec) map[string]int {
	counts := make(map[string]int, len(models.Categories))
	for _, cat := range models.Categories {
		counts[cat] = 0
	}
	for _, story := range stories {
		if spec.matchAuthor(story) && spec.matchLiked(story) {
			if _, ok := counts[story.RecordedBy]; ok {
				counts[story.RecordedBy]++
			}
		}
	}
	return counts
}

// AuthorCounts returns, per author display name, how many stories match the
// category and liked filters of spec. The author selection itself is left
// out so the list can drive a multi-select with live counters.
func AuthorCounts(stories []models.Story, spec Spec) map[string]int {
	counts := make(map[string]int)
	for _, story := range stories {
		if spec.matchCategory(story) && spec.matchLiked(story) {
			counts[displayAuthor(story)]++
		}
	}
	return counts
}

func displayAuthor(story models.Story) string {
	if story.Author == "" {
		return UnknownAuthor
	}
	return story.Author
}
