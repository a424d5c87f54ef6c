package viewmodel

import (
	"fmt"
	"time"

	"github.com/unowned-ai/geonote/pkg/notes"
)

// RelativeTime renders a unix-millis timestamp the way the note list shows it:
// "now", minutes, hours, days, then a dd/mm/yy date after a week.
func RelativeTime(now time.Time, tsMillis int64) string {
	ts := time.UnixMilli(tsMillis)
	diff := now.Sub(ts)

	switch {
	case diff < time.Minute:
		return "now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(diff/(24*time.Hour)))
	default:
		return ts.In(now.Location()).Format("02/01/06")
	}
}

// LocationLabel formats the coordinates of n with the given precision, or
// "no location" when it has none.
func LocationLabel(n notes.Note, digits int) string {
	if !n.HasLocation() {
		return "no location"
	}
	return fmt.Sprintf("%.*f, %.*f", digits, *n.Latitude, digits, *n.Longitude)
}

// AccuracyLabel renders an accuracy radius in whole meters.
func AccuracyLabel(accuracy *float32) string {
	if accuracy == nil {
		return ""
	}
	return fmt.Sprintf("±%d m", int(*accuracy))
}

// TagChips returns at most limit tags for compact list rows.
func TagChips(n notes.Note, limit int) []string {
	tags := notes.SplitTags(n.Tags)
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}
