package report

import (
	"path/filepath"
	"time"

	"github.com/woskit/woskit/wos"
)

// YearCount is a row of the publication year distribution.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// WorkflowData carries everything the workflow report shows.
type WorkflowData struct {
	RunID     string
	Generated time.Time
	DataDir   string
	Language  string

	WOSFile       string
	ScopusFile    string
	ConvertedFile string
	MergedFile    string
	FilteredFile  string
	ReportFile    string

	WOS      wos.Tally
	Scopus   wos.Tally
	Merged   wos.Tally
	Filtered wos.Tally
	// Duplicates is the number of records the merger removed.
	Duplicates int
	// Languages is the distribution over the merged set.
	Languages *wos.Counter
	// Years is the publication year distribution of the final set,
	// including empty years; UnknownYear counts records without a usable PY.
	Years       []YearCount
	UnknownYear int
}

// Combined is the number of records before deduplication.
func (d WorkflowData) Combined() int { return d.WOS.Total + d.Scopus.Total }

// Removed is the number of merged records dropped by the language filter.
func (d WorkflowData) Removed() int { return d.Merged.Total - d.Filtered.Total }

func (w *writer) tally(t wos.Tally) {
	w.line("  - Article:           %6d (%s)", t.Article, Percent(t.Article, t.Total))
	w.line("  - Review:            %6d (%s)", t.Review, Percent(t.Review, t.Total))
	w.line("  - Other:             %6d (%s)", t.Other, Percent(t.Other, t.Total))
}

// Workflow renders the complete workflow report.
func Workflow(d WorkflowData) string {
	var (
		w        = &writer{width: 80}
		combined = d.Combined()
		removed  = d.Removed()
	)
	w.rule()
	w.line("Literature Processing Workflow - Complete Report")
	w.rule()
	w.blank()
	w.line("Generated:       %s", d.Generated.Format("2006-01-02 15:04:05"))
	w.line("Run:             %s", d.RunID)
	w.line("Data directory:  %s", d.DataDir)
	w.line("Target language: %s", d.Language)
	w.blank()

	w.section("1. WOS original data")
	w.line("Source:        %s", filepath.Base(d.WOSFile))
	w.line("Total records: %6d", d.WOS.Total)
	w.tally(d.WOS)
	w.blank()

	w.section("2. Scopus original data")
	w.line("Source:        %s", filepath.Base(d.ScopusFile))
	w.line("Total records: %6d", d.Scopus.Total)
	w.tally(d.Scopus)
	w.blank()

	w.section("3. Merge and deduplication")
	w.line("Before merge:  %6d (WOS: %d, Scopus: %d)", combined, d.WOS.Total, d.Scopus.Total)
	w.line("Duplicates:    %6d (%s)", d.Duplicates, Percent(d.Duplicates, combined))
	w.line("After merge:   %6d", d.Merged.Total)
	w.tally(d.Merged)
	w.blank()

	w.section("4. Language distribution (merged)")
	w.distribution(d.Languages, d.Merged.Total, 6, d.Language)
	w.blank()

	w.section("5. %s filter result", d.Language)
	w.line("Before filter: %6d", d.Merged.Total)
	w.line("Removed:       %6d (%s)", removed, Percent(removed, d.Merged.Total))
	w.line("After filter:  %6d (%s)", d.Filtered.Total, Percent(d.Filtered.Total, d.Merged.Total))
	w.tally(d.Filtered)
	w.blank()

	w.section("6. Publication years (final set)")
	for _, y := range d.Years {
		w.line("  %d: %6d (%s)", y.Year, y.Count, Percent(y.Count, d.Filtered.Total))
	}
	if d.UnknownYear > 0 {
		w.line("  n/a:  %6d (%s)", d.UnknownYear, Percent(d.UnknownYear, d.Filtered.Total))
	}
	w.blank()

	w.section("7. Data flow")
	w.line("WOS original:            %6d", d.WOS.Total)
	w.line("Scopus original:         %6d", d.Scopus.Total)
	w.line("      | merge")
	w.line("Before deduplication:    %6d", combined)
	w.line("      | deduplicate (%d removed)", d.Duplicates)
	w.line("After deduplication:     %6d", d.Merged.Total)
	w.line("      | language filter (%d removed)", removed)
	w.line("Final %-19s%6d", d.Language+":", d.Filtered.Total)
	w.blank()

	w.section("8. Generated files")
	w.line("%s %s", check, filepath.Base(d.ConvertedFile))
	w.line("   Scopus records converted to the WOS tagged format")
	w.blank()
	w.line("%s %s", check, filepath.Base(d.MergedFile))
	w.line("   merged and deduplicated WOS and Scopus records")
	w.line("   %d records", d.Merged.Total)
	w.blank()
	w.line("%s %s", check, filepath.Base(d.FilteredFile))
	w.line("   %s records only, the final data set", d.Language)
	w.line("   %d records", d.Filtered.Total)
	w.blank()
	w.line("%s %s", check, filepath.Base(d.ReportFile))
	w.line("   this report")
	w.blank()

	w.section("9. Methods (suggested wording)")
	w.blank()
	w.line("Data sources and search strategy:")
	w.line("  Records were retrieved from Web of Science (WOS) and Scopus.")
	w.line("  The WOS search yielded %d records, the Scopus search %d records.", d.WOS.Total, d.Scopus.Total)
	w.blank()
	w.line("Integration and deduplication:")
	w.line("  Records of both databases were combined and duplicates were")
	w.line("  identified by DOI and title. %d duplicates were removed, leaving", d.Duplicates)
	w.line("  %d unique records.", d.Merged.Total)
	w.blank()
	w.line("Inclusion criteria:")
	w.line("  Only %s-language publications were included; %d records in", d.Language, removed)
	w.line("  other languages were excluded. The final set of %d records", d.Filtered.Total)
	w.line("  comprises %d research articles and %d reviews.", d.Filtered.Article, d.Filtered.Review)
	w.blank()
	w.rule()
	w.line("End of Report")
	w.rule()
	return w.String()
}
