package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/unowned-ai/geonote/pkg/notes"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) int64 { return now.Add(-d).UnixMilli() }

	assert.Equal(t, "now", RelativeTime(now, at(30*time.Second)))
	assert.Equal(t, "5m", RelativeTime(now, at(5*time.Minute)))
	assert.Equal(t, "3h", RelativeTime(now, at(3*time.Hour+10*time.Minute)))
	assert.Equal(t, "2d", RelativeTime(now, at(50*time.Hour)))
	assert.Equal(t, "10/03/24", RelativeTime(now, at(10*24*time.Hour)))
}

func TestLocationLabel(t *testing.T) {
	n := notes.Note{Latitude: ptr(-33.44891), Longitude: ptr(-70.66931)}
	assert.Equal(t, "-33.4489, -70.6693", LocationLabel(n, 4))
	assert.Equal(t, "no location", LocationLabel(notes.Note{}, 4))
}

func TestAccuracyLabel(t *testing.T) {
	assert.Equal(t, "±10 m", AccuracyLabel(ptr(float32(10.5))))
	assert.Empty(t, AccuracyLabel(nil))
}

func TestTagChips(t *testing.T) {
	n := notes.Note{Tags: ptr("viaje, trabajo ,café,extra")}
	assert.Equal(t, []string{"viaje", "trabajo", "café"}, TagChips(n, 3))
	assert.Equal(t, []string{"viaje", "trabajo", "café", "extra"}, TagChips(n, 0))
}
