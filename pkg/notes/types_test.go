package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want *string
	}{
		{name: "nil stays nil", in: nil, want: nil},
		{name: "blank becomes nil", in: ptr("   "), want: nil},
		{name: "empty becomes nil", in: ptr(""), want: nil},
		{name: "trimmed as a whole", in: ptr("  a, b ,c "), want: ptr("a, b ,c")},
		{name: "untouched", in: ptr("tag1,tag2"), want: ptr("tag1,tag2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}

func TestSplitTags(t *testing.T) {
	assert.Nil(t, SplitTags(nil))
	assert.Equal(t, []string{"a", "b", "c"}, SplitTags(ptr(" a, b ,,c ")))
	assert.Empty(t, SplitTags(ptr(" , ")))
}

func TestNoteHasLocation(t *testing.T) {
	assert.True(t, Note{Latitude: ptr(1.0), Longitude: ptr(2.0)}.HasLocation())
	assert.False(t, Note{Latitude: ptr(1.0)}.HasLocation())
	assert.False(t, Note{}.HasLocation())
}

func TestNoteIsNew(t *testing.T) {
	assert.True(t, Note{}.IsNew())
	assert.False(t, Note{ID: 5}.IsNew())
}
