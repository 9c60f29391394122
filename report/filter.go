package report

import (
	"github.com/woskit/woskit/langfilter"
)

// Labels name the files and language a filter report is about.
type Labels struct {
	Input    string
	Output   string
	Language string
}

// Filter renders the report of a single filter pass. The language marked in
// the distribution is the one in labels, falling back to the one recorded
// in stats.
func Filter(stats *langfilter.Statistics, labels Labels) string {
	language := labels.Language
	if language == "" {
		language = stats.Language
	}
	w := &writer{width: 60}
	w.rule()
	w.line("Language Filter Report")
	w.rule()
	w.blank()
	w.line("Input file:      %s", labels.Input)
	w.line("Output file:     %s", labels.Output)
	w.line("Target language: %s", language)
	w.blank()
	w.section("Result:")
	w.line("Total records:          %6d", stats.Total)
	w.line("Filtered records:       %6d", stats.Filtered)
	w.line("No language field:      %6d", stats.NoLanguage)
	w.line("Retention:              %5.1f%%", stats.Retention())
	if n := stats.Diagnostics.Dropped(); n > 0 {
		w.line("Dropped while parsing:  %6d", n)
	}
	w.blank()
	w.section("Language distribution:")
	w.distribution(stats.Distribution, stats.Total, 5, language)
	w.blank()
	w.rule()
	return w.String()
}
