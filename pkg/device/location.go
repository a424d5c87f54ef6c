package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
)

// Fix is a single position reading.
type Fix struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float32 `json:"accuracy,omitempty"`
}

// LocationSource yields one fix per call or fails.
type LocationSource interface {
	CurrentLocation(ctx context.Context) (Fix, error)
}

// StaticSource always returns the same fix, or Err when set.
type StaticSource struct {
	Fix Fix
	Err error
}

func (s StaticSource) CurrentLocation(ctx context.Context) (Fix, error) {
	if err := ctx.Err(); err != nil {
		return Fix{}, err
	}
	if s.Err != nil {
		return Fix{}, s.Err
	}
	return s.Fix, nil
}

// CommandSource runs an external locator that prints a JSON object with
// latitude, longitude and accuracy fields, like termux-location.
type CommandSource struct {
	Name string
	Args []string
}

func (s CommandSource) CurrentLocation(ctx context.Context) (Fix, error) {
	if s.Name == "" {
		return Fix{}, errors.New("no location command configured")
	}
	out, err := exec.CommandContext(ctx, s.Name, s.Args...).Output()
	if err != nil {
		return Fix{}, fmt.Errorf("failed to run '%s': %w", s.Name, err)
	}

	var raw struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Accuracy  *float64 `json:"accuracy"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		return Fix{}, fmt.Errorf("failed to parse output of '%s': %w", s.Name, err)
	}
	if raw.Latitude == nil || raw.Longitude == nil {
		return Fix{}, fmt.Errorf("'%s' returned no coordinates", s.Name)
	}

	fix := Fix{Latitude: *raw.Latitude, Longitude: *raw.Longitude}
	if raw.Accuracy != nil {
		a := float32(*raw.Accuracy)
		fix.Accuracy = &a
	}
	return fix, nil
}

// LocationError carries the message shown next to the location field.
type LocationError struct {
	Message string
	Err     error
}

func (e *LocationError) Error() string { return e.Message }

func (e *LocationError) Unwrap() error { return e.Err }

// FetchLocation asks gate, then src. Any failure comes back as a *LocationError;
// callers show its message and carry on with the note unlocated.
func FetchLocation(ctx context.Context, gate PermissionGate, src LocationSource) (*Fix, error) {
	if gate != nil && !gate.Allowed(CapabilityLocation) {
		return nil, &LocationError{Message: "location permission not granted", Err: ErrPermissionDenied}
	}
	if src == nil {
		return nil, &LocationError{Message: "no location source available"}
	}

	fix, err := src.CurrentLocation(ctx)
	if err != nil {
		return nil, &LocationError{Message: fmt.Sprintf("could not get location: %v", err), Err: err}
	}
	return &fix, nil
}
