package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func searchFixture() []Note {
	return []Note{
		{ID: 1, Title: "Grocery list", Body: "milk, eggs", Tags: ptr("home")},
		{ID: 2, Title: "Trip to Valparaiso", Body: "ferry schedule", Tags: ptr("viaje, trabajo")},
		{ID: 3, Title: "Standup", Body: "notes from monday", Tags: nil},
	}
}

func TestSearch_EmptyQueryReturnsAll(t *testing.T) {
	notes := searchFixture()
	assert.Equal(t, notes, Search(notes, "   "))
}

func TestSearch_MatchesTitleBodyAndTags(t *testing.T) {
	notes := searchFixture()

	byTitle := Search(notes, "grocery")
	if assert.NotEmpty(t, byTitle) {
		assert.Equal(t, int64(1), byTitle[0].ID)
	}

	byBody := Search(notes, "ferry")
	if assert.NotEmpty(t, byBody) {
		assert.Equal(t, int64(2), byBody[0].ID)
	}

	byTag := Search(notes, "trabajo")
	if assert.NotEmpty(t, byTag) {
		assert.Equal(t, int64(2), byTag[0].ID)
	}
}

func TestSearch_NoMatch(t *testing.T) {
	assert.Empty(t, Search(searchFixture(), "zzzzqqq"))
}

func TestFilterByTag(t *testing.T) {
	notes := searchFixture()

	got := FilterByTag(notes, "TRABAJO")
	assert.Equal(t, []int64{2}, ids(got))

	assert.Empty(t, FilterByTag(notes, "missing"))
	assert.Equal(t, notes, FilterByTag(notes, ""))
}
