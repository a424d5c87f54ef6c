package notes

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// searchSource adapts a note slice to fuzzy.Source.
type searchSource []Note

func (s searchSource) String(i int) string {
	n := s[i]
	var b strings.Builder
	b.WriteString(n.Title)
	b.WriteByte(' ')
	b.WriteString(n.Body)
	if n.Tags != nil {
		b.WriteByte(' ')
		b.WriteString(*n.Tags)
	}
	return b.String()
}

func (s searchSource) Len() int { return len(s) }

// Search fuzzy-matches query against title, body and tags, best match first.
// An empty query returns notes unchanged.
func Search(notes []Note, query string) []Note {
	query = strings.TrimSpace(query)
	if query == "" {
		return notes
	}

	matches := fuzzy.FindFrom(query, searchSource(notes))
	results := make([]Note, 0, len(matches))
	for _, m := range matches {
		results = append(results, notes[m.Index])
	}
	return results
}

// FilterByTag keeps notes carrying tag, compared case-insensitively.
func FilterByTag(notes []Note, tag string) []Note {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return notes
	}

	results := []Note{}
	for _, n := range notes {
		for _, t := range SplitTags(n.Tags) {
			if strings.EqualFold(t, tag) {
				results = append(results, n)
				break
			}
		}
	}
	return results
}
