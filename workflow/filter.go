package workflow

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"
	"github.com/woskit/woskit/langfilter"
	"github.com/woskit/woskit/report"
	"github.com/woskit/woskit/wos"
	"github.com/woskit/woskit/xio"
)

// FilterOptions configure a single run of the language filter stage.
type FilterOptions struct {
	Input    string
	Output   string
	Language string
	// StatsJSON additionally writes the statistics as JSON.
	StatsJSON bool
	Logger    logrus.FieldLogger
	// Stdout receives the report, if set.
	Stdout io.Writer
}

// FilterResult is the outcome of a filter stage run.
type FilterResult struct {
	Records    []*wos.Record
	Stats      *langfilter.Statistics
	Report     string
	ReportFile string
	StatsFile  string
}

// outputStem strips a compression suffix and a ".txt" extension.
func outputStem(output string) string {
	return strings.TrimSuffix(xio.TrimCompressionSuffix(output), ".txt")
}

// ReportPath returns the location of the filter report for an output file,
// e.g. "english_only_filter_report.txt" for "english_only.txt.gz".
func ReportPath(output string) string {
	return outputStem(output) + "_filter_report.txt"
}

// StatsPath returns the location of the JSON statistics for an output file.
func StatsPath(output string) string {
	return outputStem(output) + "_filter_stats.json"
}

// RunFilter reads the input, keeps the records in the target language,
// writes them to the output and saves a report next to it. If there is
// nothing to write, ErrNoRecords or ErrNoMatches is returned and no file is
// created.
func RunFilter(opts FilterOptions) (*FilterResult, error) {
	var log logrus.FieldLogger = logrus.StandardLogger()
	if opts.Logger != nil {
		log = opts.Logger
	}
	if opts.Language == "" {
		opts.Language = langfilter.DefaultLanguage
	}
	log = log.WithField("stage", "filter")
	if _, err := os.Stat(opts.Input); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, opts.Input)
		}
		return nil, err
	}
	log.WithField("file", opts.Input).Info("reading records")
	f, err := wos.ReadFile(opts.Input)
	if err != nil {
		return nil, err
	}
	if n := f.Diagnostics.Dropped(); n > 0 {
		log.WithFields(logrus.Fields{
			"empty":     f.Diagnostics.EmptyRecords,
			"truncated": f.Diagnostics.TruncatedRecords,
		}).Warnf("dropped %d incomplete records", n)
	}
	log.Infof("parsed %d records", len(f.Records))
	if len(f.Records) == 0 {
		log.Warn("no records found")
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, opts.Input)
	}
	selected, stats := langfilter.Filter(f.Records, opts.Language)
	stats.Diagnostics = f.Diagnostics
	log.WithFields(logrus.Fields{
		"language":    opts.Language,
		"kept":        stats.Filtered,
		"no_language": stats.NoLanguage,
	}).Infof("kept %d of %d records", stats.Filtered, stats.Total)
	if len(selected) == 0 {
		log.Warnf("no %s records found", opts.Language)
		return nil, fmt.Errorf("%w: %s", ErrNoMatches, opts.Language)
	}
	if err := wos.WriteFile(opts.Output, f.Header, selected); err != nil {
		return nil, err
	}
	log.WithField("file", opts.Output).Infof("wrote %d records", len(selected))
	result := &FilterResult{
		Records: selected,
		Stats:   stats,
		Report: report.Filter(stats, report.Labels{
			Input:    opts.Input,
			Output:   opts.Output,
			Language: opts.Language,
		}),
		ReportFile: ReportPath(opts.Output),
	}
	if err := xio.WriteFile(result.ReportFile, []byte(result.Report)); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	log.WithField("file", result.ReportFile).Info("report saved")
	if opts.StatsJSON {
		b, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return nil, err
		}
		result.StatsFile = StatsPath(opts.Output)
		if err := xio.WriteFile(result.StatsFile, append(b, '\n')); err != nil {
			return nil, fmt.Errorf("write stats: %w", err)
		}
		log.WithField("file", result.StatsFile).Info("statistics saved")
	}
	if opts.Stdout != nil {
		if err := report.WriteTo(opts.Stdout, result.Report); err != nil {
			return nil, err
		}
	}
	return result, nil
}
