package notes

import "strings"

// Note is a short text note, optionally tagged with a location, a photo and free-text labels.
type Note struct {
	ID        int64    `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Body      string   `json:"body" yaml:"body"`
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Accuracy  *float32 `json:"accuracy,omitempty" yaml:"accuracy,omitempty"` // meters
	CreatedAt int64    `json:"createdAt" yaml:"createdAt"`                   // unix millis
	UpdatedAt int64    `json:"updatedAt" yaml:"updatedAt"`                   // unix millis
	Tags      *string  `json:"tags,omitempty" yaml:"tags,omitempty"`         // comma-separated
	Archived  bool     `json:"archived" yaml:"archived"`
	ImageURI  *string  `json:"imageUri,omitempty" yaml:"imageUri,omitempty"`
}

// HasLocation reports whether both coordinates are set.
func (n Note) HasLocation() bool {
	return n.Latitude != nil && n.Longitude != nil
}

// IsNew reports whether the note has not been persisted yet.
func (n Note) IsNew() bool {
	return n.ID <= 0
}

// NormalizeTags trims tags and maps blank input to nil.
// The string is trimmed as a whole; individual tags keep their inner spacing.
func NormalizeTags(tags *string) *string {
	if tags == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*tags)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SplitTags returns the individual, trimmed, non-empty labels of a tags value.
// It is meant for display; stored values are never rewritten with it.
func SplitTags(tags *string) []string {
	if tags == nil {
		return nil
	}
	var out []string
	for _, t := range strings.Split(*tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
