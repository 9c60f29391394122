package workflow

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woskit/woskit/config"
	"github.com/woskit/woskit/exdep"
	"github.com/woskit/woskit/report"
	"github.com/woskit/woskit/wos"
)

// collaboratorFunc adapts a function to the Collaborator interface.
type collaboratorFunc func(args map[string]string) error

func (f collaboratorFunc) Run(args map[string]string) error { return f(args) }

// fakeConverter pretends to convert a Scopus export by copying a prepared
// tagged file.
func fakeConverter(t *testing.T) collaboratorFunc {
	return func(args map[string]string) error {
		if _, err := os.Stat(args["input"]); err != nil {
			return err
		}
		b, err := os.ReadFile(filepath.Join("testdata", "scopus_converted.txt"))
		require.NoError(t, err)
		return os.WriteFile(args["output"], b, 0644)
	}
}

// fakeMerger keeps the first record for each DOI.
func fakeMerger(args map[string]string) error {
	var (
		seen   = make(map[string]bool)
		merged []*wos.Record
		header wos.Header
	)
	for _, key := range []string{"wos", "scopus"} {
		f, err := wos.ReadFile(args[key])
		if err != nil {
			return err
		}
		if header == "" {
			header = f.Header
		}
		for _, r := range f.Records {
			doi, _ := r.Get(wos.TagDOI)
			if seen[doi] {
				continue
			}
			seen[doi] = true
			merged = append(merged, r)
		}
	}
	return wos.WriteFile(args["output"], header, merged)
}

// setup prepares a data directory with both exports and returns a workflow
// with fake collaborators.
func setup(t *testing.T) (*Workflow, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	b, err := os.ReadFile(filepath.Join("testdata", "wos.txt"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wos.txt"), b, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scopus.csv"), []byte("Authors,Title\n"), 0644))
	cfg := &config.Config{
		DataDir:  dir,
		Language: "English",
		Files: config.FilesConfig{
			WOS:       "wos.txt",
			Scopus:    "scopus.csv",
			Converted: "scopus_converted_to_wos.txt",
			Merged:    "merged_deduplicated.txt",
			Filtered:  "english_only.txt",
			Report:    "workflow_complete_report.txt",
			Summary:   "workflow_summary.json",
		},
	}
	logger, _ := test.NewNullLogger()
	var stdout bytes.Buffer
	return &Workflow{
		Config:    cfg,
		Converter: fakeConverter(t),
		Merger:    collaboratorFunc(fakeMerger),
		Logger:    logger,
		Stdout:    &stdout,
		Now:       func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) },
	}, &stdout
}

func TestRun(t *testing.T) {
	w, stdout := setup(t)
	s, err := w.Run()
	require.NoError(t, err)

	assert.Equal(t, 3, s.WOS.Total)
	assert.Equal(t, 2, s.Scopus.Total)
	assert.Equal(t, 4, s.Merged.Total)
	assert.Equal(t, 1, s.Duplicates)
	assert.Equal(t, 3, s.Filtered.Total)
	assert.Equal(t, 2, s.Filtered.Article)
	assert.Equal(t, 1, s.Filtered.Review)
	assert.Equal(t, 1, s.Filter.NoLanguage+s.Filter.Other())
	assert.Len(t, s.RunID, 36)

	wantYears := []report.YearCount{{Year: 2020, Count: 1}, {Year: 2021, Count: 0}, {Year: 2022, Count: 1}}
	if diff := cmp.Diff(wantYears, s.Years); diff != "" {
		t.Errorf("years mismatch (-want +got):\n%s", diff)
	}

	f, err := wos.ReadFile(s.Files.Filtered)
	require.NoError(t, err)
	var dois []string
	for _, r := range f.Records {
		doi, _ := r.Get(wos.TagDOI)
		dois = append(dois, doi)
	}
	assert.Equal(t, []string{"10.1000/a", "10.1000/c", "10.1000/d"}, dois)

	b, err := os.ReadFile(s.Files.Report)
	require.NoError(t, err)
	text := string(b)
	assert.Contains(t, text, "Run:             "+s.RunID)
	assert.Contains(t, text, "Generated:       2024-05-01 09:00:00")
	assert.Contains(t, text, "Duplicates:         1 ( 20.0%)")
	assert.Contains(t, text, "  n/a:       1 ( 33.3%)")
	assert.Contains(t, stdout.String(), text)
	assert.FileExists(t, ReportPath(s.Files.Filtered))

	b, err = os.ReadFile(s.Files.Summary)
	require.NoError(t, err)
	var summary struct {
		RunID      string `json:"run_id"`
		Duplicates int    `json:"duplicates"`
		Merged     struct {
			Total     int `json:"total"`
			Languages []struct {
				Label string `json:"label"`
				Count int    `json:"count"`
			} `json:"languages"`
		} `json:"merged"`
	}
	require.NoError(t, json.Unmarshal(b, &summary))
	assert.Equal(t, s.RunID, summary.RunID)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 4, summary.Merged.Total)
	require.Len(t, summary.Merged.Languages, 2)
	assert.Equal(t, "English", summary.Merged.Languages[0].Label)
	assert.Equal(t, 3, summary.Merged.Languages[0].Count)
}

func TestRunMissingInput(t *testing.T) {
	w, _ := setup(t)
	require.NoError(t, os.Remove(filepath.Join(w.Config.DataDir, "scopus.csv")))
	_, err := w.Run()
	require.ErrorIs(t, err, ErrInputMissing)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageCheck, se.Stage)
}

func TestRunMissingProgram(t *testing.T) {
	w, _ := setup(t)
	w.Deps = []exdep.Dep{{Name: "woskit-no-such-converter"}, {Name: "sh"}}
	_, err := w.Run()
	require.ErrorIs(t, err, exdep.ErrNotFound)
	assert.Contains(t, err.Error(), "woskit-no-such-converter")
	assert.NoFileExists(t, filepath.Join(w.Config.DataDir, "scopus_converted_to_wos.txt"))
}

func TestRunCollaboratorFails(t *testing.T) {
	w, _ := setup(t)
	var merged bool
	w.Converter = collaboratorFunc(func(args map[string]string) error {
		return &CommandError{
			Command: "convert",
			Output:  "Traceback (most recent call last):\nValueError: bad csv\n",
			Err:     errors.New("exit status 1"),
		}
	})
	w.Merger = collaboratorFunc(func(args map[string]string) error {
		merged = true
		return nil
	})
	_, err := w.Run()
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageConvert, se.Stage)
	assert.Contains(t, se.Output, "ValueError: bad csv")
	assert.Contains(t, err.Error(), "convert: command \"convert\" failed: exit status 1: ValueError: bad csv")
	assert.False(t, merged, "merge must not run after a failed conversion")
	assert.NoFileExists(t, filepath.Join(w.Config.DataDir, "workflow_complete_report.txt"))
}

func TestRunNoMatches(t *testing.T) {
	w, _ := setup(t)
	w.Config.Language = "Klingon"
	_, err := w.Run()
	require.ErrorIs(t, err, ErrNoMatches)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageFilter, se.Stage)
	assert.FileExists(t, filepath.Join(w.Config.DataDir, "merged_deduplicated.txt"))
	assert.NoFileExists(t, filepath.Join(w.Config.DataDir, "english_only.txt"))
}

func TestYearCounts(t *testing.T) {
	records := wos.Parse("PY 2019\nER\nPY 2021\nER\nPY 2019\nER\nTI undated\nER\n").Records
	want := []report.YearCount{{Year: 2019, Count: 2}, {Year: 2020, Count: 0}, {Year: 2021, Count: 1}}
	if diff := cmp.Diff(want, yearCounts(records)); diff != "" {
		t.Errorf("years mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, yearCounts(nil))
}

func TestCommand(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ok := &Command{Template: "true", Timeout: 10 * time.Second, Logger: logger}
	require.NoError(t, ok.Run(nil))

	fail := &Command{Template: "false", Timeout: 10 * time.Second, Logger: logger}
	err := fail.Run(nil)
	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "false", ce.Command)
}

func TestCommandSpecialPaths(t *testing.T) {
	var (
		dir    = t.TempDir()
		input  = writeFile(t, dir, "R&D <2024> \"it's\".csv", "x")
		output = filepath.Join(dir, "out put.txt")
	)
	logger, _ := test.NewNullLogger()
	cmd := &Command{
		Template: `test -f {{ input }} && printf '%s' {{{ input }}} > {{output}}`,
		Logger:   logger,
	}
	require.NoError(t, cmd.Run(map[string]string{"input": input, "output": output}))
	b, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, input, string(b))
}

func TestRawTemplate(t *testing.T) {
	var cases = []struct {
		t    string
		want string
	}{
		{"convert {{ input }} {{ output }}", "convert {{{input}}} {{{output}}}"},
		{"convert {{input}} {{{ output }}}", "convert {{{input}}} {{{output}}}"},
		{"merge --flag", "merge --flag"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, rawTemplate(c.t))
	}
}
