package device

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ImageCapture produces a photo and returns its URI. ok is false when the user
// backed out, which is not an error.
type ImageCapture interface {
	Capture(ctx context.Context) (uri string, ok bool, err error)
}

// NewImagePath returns a fresh IMG_<millis>_<id>.jpg path under dir.
func NewImagePath(dir string, now time.Time) string {
	name := fmt.Sprintf("IMG_%d_%s.jpg", now.UnixMilli(), uuid.NewString()[:8])
	return filepath.Join(dir, name)
}

func fileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// FileImport copies an existing picture into the media directory.
type FileImport struct {
	Source   string
	MediaDir string
	Now      func() time.Time
}

func (f FileImport) Capture(ctx context.Context) (string, bool, error) {
	if f.Source == "" || ctx.Err() != nil {
		return "", false, nil
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	in, err := os.Open(f.Source)
	if err != nil {
		return "", false, fmt.Errorf("failed to open image '%s': %w", f.Source, err)
	}
	defer in.Close()

	if err := os.MkdirAll(f.MediaDir, 0750); err != nil {
		return "", false, fmt.Errorf("failed to create media directory '%s': %w", f.MediaDir, err)
	}
	dst := NewImagePath(f.MediaDir, now())
	out, err := os.Create(dst)
	if err != nil {
		return "", false, fmt.Errorf("failed to create image '%s': %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return "", false, fmt.Errorf("failed to copy image: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", false, fmt.Errorf("failed to write image: %w", err)
	}

	uri, err := fileURI(dst)
	if err != nil {
		return "", false, err
	}
	return uri, true, nil
}

// CommandCapture runs a camera command that writes a photo to the path given
// as its last argument, like termux-camera-photo.
type CommandCapture struct {
	Name     string
	Args     []string
	MediaDir string
}

func (c CommandCapture) Capture(ctx context.Context) (string, bool, error) {
	if c.Name == "" {
		return "", false, nil
	}
	if err := os.MkdirAll(c.MediaDir, 0750); err != nil {
		return "", false, fmt.Errorf("failed to create media directory '%s': %w", c.MediaDir, err)
	}

	dst := NewImagePath(c.MediaDir, time.Now())
	args := append(append([]string{}, c.Args...), dst)
	if err := exec.CommandContext(ctx, c.Name, args...).Run(); err != nil {
		if ctx.Err() != nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to run '%s': %w", c.Name, err)
	}
	if info, err := os.Stat(dst); err != nil || info.Size() == 0 {
		// Nothing written: the shot was dismissed.
		_ = os.Remove(dst)
		return "", false, nil
	}

	uri, err := fileURI(dst)
	if err != nil {
		return "", false, err
	}
	return uri, true, nil
}

// CapturePhoto checks the camera permission before delegating to capture.
func CapturePhoto(ctx context.Context, gate PermissionGate, capture ImageCapture) (*string, error) {
	if gate != nil && !gate.Allowed(CapabilityCamera) {
		return nil, ErrPermissionDenied
	}
	if capture == nil {
		return nil, nil
	}
	uri, ok, err := capture.Capture(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return &uri, nil
}
