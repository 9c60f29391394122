package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

// isolateConfigHome points the XDG config home to an empty directory for
// the duration of the test.
func isolateConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", dir)
	xdg.Reload()
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolateConfigHome(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "English", cfg.Language)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, "wos.txt", cfg.Files.WOS)
	assert.Equal(t, "english_only.txt", cfg.Files.Filtered)
	assert.Zero(t, cfg.Converter.Timeout)
	assert.Zero(t, cfg.Merger.Timeout)
	assert.Contains(t, cfg.Merger.Template, "{{ scopus }}")
	assert.Empty(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "workflow.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/exports", cfg.DataDir)
	assert.Equal(t, "German", cfg.Language)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, "deutsch.txt", cfg.Files.Filtered)
	assert.Equal(t, "wos.txt", cfg.Files.WOS)
	assert.Equal(t, "convert-scopus {{ input }} {{ output }}", cfg.Converter.Template)
	assert.Equal(t, 5*time.Minute, cfg.Converter.Timeout)
	assert.Equal(t, filepath.Join("/srv/exports", "deutsch.txt"), cfg.Path(cfg.Files.Filtered))
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("WOSKIT_LANGUAGE", "French")
	t.Setenv("WOSKIT_LOG_LEVEL", "warning")
	t.Setenv("WOSKIT_MERGER_TEMPLATE", "merge {{ wos }} {{ scopus }} {{ output }}")
	cfg, err := Load(filepath.Join("testdata", "workflow.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "French", cfg.Language)
	assert.Equal(t, "warning", cfg.Log.Level)
	assert.Equal(t, "merge {{ wos }} {{ scopus }} {{ output }}", cfg.Merger.Template)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadDefaultPath(t *testing.T) {
	dir := isolateConfigHome(t)
	path := DefaultPath()
	require.Equal(t, filepath.Join(dir, "woskit", "workflow.yaml"), path)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("language: Spanish\n"), 0644))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Spanish", cfg.Language)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "workflow.yaml"))
	require.NoError(t, err)
	require.Empty(t, cfg.Validate())

	var cases = []struct {
		help   string
		modify func(c *Config)
		want   string
	}{
		{"log level", func(c *Config) { c.Log.Level = "TRACE" }, "log level"},
		{"empty language", func(c *Config) { c.Language = " " }, "language is empty"},
		{"empty template", func(c *Config) { c.Converter.Template = "" }, "converter template is empty"},
		{"placeholder", func(c *Config) { c.Merger.Template = "merge {{ wos }} {{ output }}" }, `"scopus"`},
		{"quoted placeholder", func(c *Config) { c.Converter.Template = `convert "{{ input }}" {{ output }}` }, "quotes a placeholder"},
		{"timeout", func(c *Config) { c.Merger.Timeout = -time.Second }, "negative"},
		{"file clash", func(c *Config) { c.Files.Report = c.Files.Merged }, "files.merged and files.report"},
	}
	for _, c := range cases {
		t.Run(c.help, func(t *testing.T) {
			modified := *cfg
			c.modify(&modified)
			warnings := modified.Validate()
			if !hasWarning(warnings, c.want) {
				t.Errorf("expected warning containing %q, got %v", c.want, warnings)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	var cases = []struct {
		s    string
		want logrus.Level
		err  bool
	}{
		{"DEBUG", logrus.DebugLevel, false},
		{"info", logrus.InfoLevel, false},
		{"Warning", logrus.WarnLevel, false},
		{"WARN", logrus.WarnLevel, false},
		{"ERROR", logrus.ErrorLevel, false},
		{"TRACE", logrus.InfoLevel, true},
		{"", logrus.InfoLevel, true},
	}
	for _, c := range cases {
		got, err := ParseLevel(c.s)
		if (err != nil) != c.err {
			t.Errorf("ParseLevel(%q): unexpected error %v", c.s, err)
		}
		if got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.s, got, c.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("WARNING", &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.WithField("stage", "filter").Warn("no matches")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "no matches")
	assert.Contains(t, out, "stage=filter")

	_, err = NewLogger("loud", &buf)
	assert.Error(t, err)
}
