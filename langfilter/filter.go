// Package langfilter selects records by their language field and counts the
// language distribution along the way.
package langfilter

import (
	"strings"

	"github.com/woskit/woskit/wos"
)

// DefaultLanguage is the language kept when none is given.
const DefaultLanguage = "English"

// Statistics summarize a single filter pass.
type Statistics struct {
	// Language is the target language as given.
	Language string `json:"language"`
	// Total is the number of records seen.
	Total int `json:"total_records"`
	// Filtered is the number of records kept.
	Filtered int `json:"filtered_records"`
	// NoLanguage counts records without an LA field.
	NoLanguage int `json:"no_language_field"`
	// Distribution counts trimmed LA values over all records that have one,
	// case preserved as first seen.
	Distribution *wos.Counter `json:"language_distribution"`
	// Diagnostics are filled in by callers that parsed the input, Filter
	// leaves them zero.
	Diagnostics wos.Diagnostics `json:"diagnostics"`
}

// Retention is the percentage of records kept, zero for empty input.
func (s *Statistics) Retention() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Filtered) / float64(s.Total) * 100
}

// Other returns the number of records with a language other than the target.
func (s *Statistics) Other() int {
	var n int
	for _, e := range s.Distribution.Entries() {
		if !Match(e.Label, s.Language) {
			n += e.Count
		}
	}
	return n
}

// Match compares a language label with the target, ignoring case only.
// Whitespace inside the label and synonyms ("eng") are not normalized.
func Match(label, target string) bool {
	return strings.ToLower(label) == strings.ToLower(target)
}

// Filter returns the records whose trimmed LA field matches language,
// keeping their relative order, together with statistics over all records.
// Records without an LA field are never selected and do not show up in the
// distribution.
func Filter(records []*wos.Record, language string) ([]*wos.Record, *Statistics) {
	var (
		selected []*wos.Record
		stats    = &Statistics{
			Language:     language,
			Total:        len(records),
			Distribution: new(wos.Counter),
		}
	)
	for _, r := range records {
		label, ok := r.Language()
		if !ok {
			stats.NoLanguage++
			continue
		}
		stats.Distribution.Add(label)
		if Match(label, language) {
			selected = append(selected, r)
			stats.Filtered++
		}
	}
	return selected, stats
}
