package device

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCapabilities(t *testing.T) {
	g := ParseCapabilities(" Location , camera,bogus,")
	assert.True(t, g.Allowed(CapabilityLocation))
	assert.True(t, g.Allowed(CapabilityCamera))
	assert.Len(t, g, 2)

	assert.False(t, ParseCapabilities("").Allowed(CapabilityLocation))
}

func TestFetchLocation(t *testing.T) {
	acc := float32(8)
	fix := Fix{Latitude: -33.4489, Longitude: -70.6693, Accuracy: &acc}
	all := StaticGate{CapabilityLocation: true}

	t.Run("success", func(t *testing.T) {
		got, err := FetchLocation(context.Background(), all, StaticSource{Fix: fix})
		require.NoError(t, err)
		assert.Equal(t, fix, *got)
	})

	t.Run("permission denied", func(t *testing.T) {
		got, err := FetchLocation(context.Background(), StaticGate{}, StaticSource{Fix: fix})
		assert.Nil(t, got)
		var locErr *LocationError
		require.ErrorAs(t, err, &locErr)
		assert.ErrorIs(t, err, ErrPermissionDenied)
		assert.Equal(t, "location permission not granted", locErr.Message)
	})

	t.Run("source failure becomes message", func(t *testing.T) {
		boom := errors.New("gps off")
		got, err := FetchLocation(context.Background(), all, StaticSource{Err: boom})
		assert.Nil(t, got)
		var locErr *LocationError
		require.ErrorAs(t, err, &locErr)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "could not get location: gps off", locErr.Message)
	})

	t.Run("no source", func(t *testing.T) {
		_, err := FetchLocation(context.Background(), nil, nil)
		var locErr *LocationError
		require.ErrorAs(t, err, &locErr)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := FetchLocation(ctx, all, StaticSource{Fix: fix})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCommandSource_MissingCommand(t *testing.T) {
	_, err := CommandSource{}.CurrentLocation(context.Background())
	assert.Error(t, err)

	_, err = CommandSource{Name: "geonote-no-such-locator"}.CurrentLocation(context.Background())
	assert.Error(t, err)
}

func TestNewImagePath(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	p := NewImagePath("/media", now)

	assert.Equal(t, "/media", filepath.Dir(p))
	assert.Regexp(t, regexp.MustCompile(`^IMG_1700000000123_[0-9a-f]{8}\.jpg$`), filepath.Base(p))
	assert.NotEqual(t, p, NewImagePath("/media", now))
}

func TestFileImport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpeg bytes"), 0644))
	media := filepath.Join(dir, "images")

	uri, ok, err := FileImport{Source: src, MediaDir: media}.Capture(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(uri, "file://"))

	data, err := os.ReadFile(strings.TrimPrefix(uri, "file://"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestFileImport_NoSourceIsCancelled(t *testing.T) {
	uri, ok, err := FileImport{MediaDir: t.TempDir()}.Capture(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, uri)
}

func TestFileImport_MissingSource(t *testing.T) {
	_, ok, err := FileImport{Source: filepath.Join(t.TempDir(), "nope.jpg"), MediaDir: t.TempDir()}.Capture(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCapturePhoto(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))
	capture := FileImport{Source: src, MediaDir: filepath.Join(dir, "images")}

	_, err := CapturePhoto(context.Background(), StaticGate{}, capture)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	uri, err := CapturePhoto(context.Background(), StaticGate{CapabilityCamera: true}, capture)
	require.NoError(t, err)
	require.NotNil(t, uri)

	uri, err = CapturePhoto(context.Background(), StaticGate{CapabilityCamera: true}, FileImport{})
	assert.NoError(t, err)
	assert.Nil(t, uri)
}
