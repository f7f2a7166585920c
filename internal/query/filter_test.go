package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpillwein/storyteller/internal/models"
)

var base = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func fixtureStories() []models.Story {
	return []models.Story{
		{ID: "001", Author: "Mira", RecordedBy: models.CategoryDani, Liked: true, Timestamp: base},
		{ID: "002", Author: "Jonas", RecordedBy: models.CategoryNina, Liked: false, Timestamp: base.Add(1 * time.Hour)},
		{ID: "003", Author: "Mira", RecordedBy: models.CategoryBeide, Liked: false, Timestamp: base.Add(2 * time.Hour)},
		{ID: "004", Author: "", RecordedBy: models.CategoryDani, Liked: true, Timestamp: base.Add(3 * time.Hour)},
		{ID: "005", Author: "Lena", RecordedBy: models.CategoryNina, Liked: true, Timestamp: base.Add(4 * time.Hour)},
	}
}

func ids(stories []models.Story) []string {
	out := make([]string, len(stories))
	for i, s := range stories {
		out[i] = s.ID
	}
	return out
}

func TestApplyEmptySpecReturnsAllSorted(t *testing.T) {
	got := Apply(fixtureStories(), Spec{ForWhom: All})
	assert.Equal(t, []string{"005", "004", "003", "002", "001"}, ids(got))
}

func TestApplyIsIdempotent(t *testing.T) {
	spec := Spec{ForWhom: models.CategoryDani, OnlyLiked: true}
	once := Apply(fixtureStories(), spec)
	twice := Apply(once, spec)
	assert.Equal(t, once, twice)
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want []string
	}{
		{"category only", Spec{ForWhom: models.CategoryDani}, []string{"004", "001"}},
		{"author only", Spec{ForWhom: All, ByWhom: []string{"Mira"}}, []string{"003", "001"}},
		{"author set is an OR", Spec{ForWhom: All, ByWhom: []string{"Mira", "Lena"}}, []string{"005", "003", "001"}},
		{"liked only", Spec{ForWhom: All, OnlyLiked: true}, []string{"005", "004", "001"}},
		{"all predicates ANDed", Spec{ForWhom: models.CategoryNina, ByWhom: []string{"Lena"}, OnlyLiked: true}, []string{"005"}},
		{"unknown author bucket", Spec{ForWhom: All, ByWhom: []string{UnknownAuthor}}, []string{"004"}},
		{"no match", Spec{ForWhom: models.CategoryBeide, OnlyLiked: true}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(fixtureStories(), tt.spec)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	stories := fixtureStories()
	Apply(stories, Spec{ForWhom: All})
	assert.Equal(t, []string{"001", "002", "003", "004", "005"}, ids(stories))
}

func TestCategoryCountsIgnoreOwnFacet(t *testing.T) {
	// Selecting a category must not affect the per-category counts;
	// the author and liked filters do.
	counts := CategoryCounts(fixtureStories(), Spec{ForWhom: models.CategoryDani, OnlyLiked: true})
	assert.Equal(t, map[string]int{
		models.CategoryNina:  1, // 005
		models.CategoryDani:  2, // 001, 004
		models.CategoryBeide: 0,
	}, counts)
}

func TestCategoryCountsWithAuthorFilter(t *testing.T) {
	counts := CategoryCounts(fixtureStories(), Spec{ForWhom: All, ByWhom: []string{"Mira"}})
	assert.Equal(t, map[string]int{
		models.CategoryNina:  0,
		models.CategoryDani:  1, // 001
		models.CategoryBeide: 1, // 003
	}, counts)
}

func TestAuthorCountsIgnoreOwnFacet(t *testing.T) {
	counts := AuthorCounts(fixtureStories(), Spec{ForWhom: models.CategoryNina, ByWhom: []string{"Mira"}})
	assert.Equal(t, map[string]int{
		"Jonas": 1, // 002
		"Lena":  1, // 005
	}, counts)
}

func TestAuthorCountsUnknownAuthorBucket(t *testing.T) {
	counts := AuthorCounts(fixtureStories(), Spec{ForWhom: All})
	require.Equal(t, 2, counts["Mira"])
	assert.Equal(t, 1, counts[UnknownAuthor])
}
