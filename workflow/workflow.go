// Package workflow runs the processing pipeline: Scopus conversion and the
// merge with WOS records through external programs, followed by the
// in-process language filter and the final report.
//
// Stages run one after another; the first failure aborts the run with a
// StageError naming the stage. Files written by earlier stages are kept.
package workflow

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"
	"github.com/woskit/woskit/config"
	"github.com/woskit/woskit/dateutil"
	"github.com/woskit/woskit/exdep"
	"github.com/woskit/woskit/langfilter"
	"github.com/woskit/woskit/report"
	"github.com/woskit/woskit/wos"
	"github.com/woskit/woskit/xio"
)

// Stage names, as used in logs and errors.
const (
	StageCheck   = "check"
	StageWOS     = "wos"
	StageConvert = "convert"
	StageMerge   = "merge"
	StageFilter  = "filter"
	StageReport  = "report"
)

// Workflow bundles configuration and collaborators of a run.
type Workflow struct {
	Config    *config.Config
	Converter Collaborator
	Merger    Collaborator
	// Deps are checked before anything runs.
	Deps   []exdep.Dep
	Logger logrus.FieldLogger
	// Stdout receives the final report, if set.
	Stdout io.Writer
	// Now defaults to time.Now.
	Now func() time.Time
}

// New returns a workflow running the converter and merger commands from
// cfg.
func New(cfg *config.Config, logger logrus.FieldLogger) *Workflow {
	return &Workflow{
		Config: cfg,
		Converter: &Command{
			Template: cfg.Converter.Template,
			Timeout:  cfg.Converter.Timeout,
			Logger:   logger,
		},
		Merger: &Command{
			Template: cfg.Merger.Template,
			Timeout:  cfg.Merger.Timeout,
			Logger:   logger,
		},
		Deps: []exdep.Dep{
			exdep.FromCommand(cfg.Converter.Template, "Scopus to WOS converter"),
			exdep.FromCommand(cfg.Merger.Template, "merge and deduplication"),
		},
		Logger: logger,
		Stdout: os.Stdout,
	}
}

// Files lists the locations a run reads and writes.
type Files struct {
	WOS       string `json:"wos"`
	Scopus    string `json:"scopus"`
	Converted string `json:"converted"`
	Merged    string `json:"merged"`
	Filtered  string `json:"filtered"`
	Report    string `json:"report"`
	Summary   string `json:"summary"`
}

// Summary is the machine readable outcome of a run.
type Summary struct {
	RunID      string                 `json:"run_id"`
	Started    time.Time              `json:"started"`
	Finished   time.Time              `json:"finished"`
	DataDir    string                 `json:"data_dir"`
	Language   string                 `json:"language"`
	Files      Files                  `json:"files"`
	WOS        wos.Tally              `json:"wos"`
	Scopus     wos.Tally              `json:"scopus"`
	Merged     wos.Tally              `json:"merged"`
	Duplicates int                    `json:"duplicates"`
	Filtered   wos.Tally              `json:"filtered"`
	Filter     *langfilter.Statistics `json:"filter"`
	Years      []report.YearCount     `json:"years"`
}

func (w *Workflow) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Workflow) files() Files {
	c := w.Config
	return Files{
		WOS:       c.Path(c.Files.WOS),
		Scopus:    c.Path(c.Files.Scopus),
		Converted: c.Path(c.Files.Converted),
		Merged:    c.Path(c.Files.Merged),
		Filtered:  c.Path(c.Files.Filtered),
		Report:    c.Path(c.Files.Report),
		Summary:   c.Path(c.Files.Summary),
	}
}

// Run executes all stages and returns a summary of the run.
func (w *Workflow) Run() (*Summary, error) {
	var (
		files = w.files()
		s     = &Summary{
			RunID:    uuid.New().String(),
			Started:  w.now(),
			DataDir:  w.Config.DataDir,
			Language: w.Config.Language,
			Files:    files,
		}
		log logrus.FieldLogger = logrus.StandardLogger()
	)
	if w.Logger != nil {
		log = w.Logger
	}
	log = log.WithField("run", s.RunID)
	log.WithFields(logrus.Fields{
		"dir":      s.DataDir,
		"language": s.Language,
	}).Info("starting workflow")

	// 0. inputs and tools
	if err := w.check(log.WithField("stage", StageCheck), files); err != nil {
		return nil, stageError(StageCheck, err)
	}
	// 1. WOS export
	t, err := tally(log.WithField("stage", StageWOS), files.WOS)
	if err != nil {
		return nil, stageError(StageWOS, err)
	}
	s.WOS = t
	// 2. Scopus conversion
	stageLog := log.WithField("stage", StageConvert)
	stageLog.WithField("file", files.Scopus).Info("converting Scopus export")
	if err := w.Converter.Run(map[string]string{
		"input":  files.Scopus,
		"output": files.Converted,
	}); err != nil {
		return nil, stageError(StageConvert, err)
	}
	if s.Scopus, err = tally(stageLog, files.Converted); err != nil {
		return nil, stageError(StageConvert, err)
	}
	// 3. merge and deduplication
	stageLog = log.WithField("stage", StageMerge)
	stageLog.Info("merging and deduplicating")
	if err := w.Merger.Run(map[string]string{
		"wos":    files.WOS,
		"scopus": files.Converted,
		"output": files.Merged,
	}); err != nil {
		return nil, stageError(StageMerge, err)
	}
	if s.Merged, err = tally(stageLog, files.Merged); err != nil {
		return nil, stageError(StageMerge, err)
	}
	s.Duplicates = s.WOS.Total + s.Scopus.Total - s.Merged.Total
	stageLog.Infof("removed %d duplicates", s.Duplicates)
	// 4. language filter
	fr, err := RunFilter(FilterOptions{
		Input:    files.Merged,
		Output:   files.Filtered,
		Language: s.Language,
		Logger:   log,
	})
	if err != nil {
		return nil, stageError(StageFilter, err)
	}
	s.Filter = fr.Stats
	s.Filtered = wos.TallyRecords(fr.Records)
	s.Years = yearCounts(fr.Records)
	// 5. report
	if err := w.writeReport(log.WithField("stage", StageReport), s, fr.Records); err != nil {
		return nil, stageError(StageReport, err)
	}
	log.WithFields(logrus.Fields{
		"merged":   s.Merged.Total,
		"filtered": s.Filtered.Total,
	}).Info("workflow complete")
	return s, nil
}

func (w *Workflow) check(log logrus.FieldLogger, files Files) error {
	for _, fn := range []string{files.WOS, files.Scopus} {
		if _, err := os.Stat(fn); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrInputMissing, fn)
			}
			return err
		}
		log.WithField("file", fn).Info("input found")
	}
	if errs := exdep.Check(w.Deps); len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func tally(log logrus.FieldLogger, filename string) (wos.Tally, error) {
	t, err := wos.TallyFile(filename)
	if err != nil {
		return t, err
	}
	log.WithFields(logrus.Fields{
		"file":    filename,
		"article": t.Article,
		"review":  t.Review,
		"other":   t.Other,
	}).Infof("%d records", t.Total)
	return t, nil
}

// yearCounts returns one row per year from the earliest to the latest
// publication year, including years without records.
func yearCounts(records []*wos.Record) []report.YearCount {
	counts := make(map[int]int)
	for _, r := range records {
		if y, ok := r.PublicationYear(); ok {
			counts[y]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)
	var result []report.YearCount
	for _, iv := range dateutil.YearSpan(years[0], years[len(years)-1]) {
		y := iv.Start.Year()
		result = append(result, report.YearCount{Year: y, Count: counts[y]})
	}
	return result
}

func (w *Workflow) writeReport(log logrus.FieldLogger, s *Summary, final []*wos.Record) error {
	var dated int
	for _, y := range s.Years {
		dated += y.Count
	}
	text := report.Workflow(report.WorkflowData{
		RunID:         s.RunID,
		Generated:     w.now(),
		DataDir:       s.DataDir,
		Language:      s.Language,
		WOSFile:       s.Files.WOS,
		ScopusFile:    s.Files.Scopus,
		ConvertedFile: s.Files.Converted,
		MergedFile:    s.Files.Merged,
		FilteredFile:  s.Files.Filtered,
		ReportFile:    s.Files.Report,
		WOS:           s.WOS,
		Scopus:        s.Scopus,
		Merged:        s.Merged,
		Filtered:      s.Filtered,
		Duplicates:    s.Duplicates,
		Languages:     s.Merged.Languages,
		Years:         s.Years,
		UnknownYear:   len(final) - dated,
	})
	if err := xio.WriteFile(s.Files.Report, []byte(text)); err != nil {
		return err
	}
	log.WithField("file", s.Files.Report).Info("report saved")
	if w.Stdout != nil {
		if err := report.WriteTo(w.Stdout, text); err != nil {
			return err
		}
	}
	s.Finished = w.now()
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := xio.WriteFile(s.Files.Summary, append(b, '\n')); err != nil {
		return err
	}
	log.WithField("file", s.Files.Summary).Info("summary saved")
	return nil
}
