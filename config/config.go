// Package config holds the workflow configuration, read from an optional
// YAML file and WOSKIT_ environment variables, and the logger setup shared
// by all commands.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// AppName is used for the default config location.
const AppName = "woskit"

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. WOSKIT_LOG_LEVEL or WOSKIT_CONVERTER_TEMPLATE.
const EnvPrefix = "WOSKIT"

// Config for the workflow. Command line flags take precedence over values
// loaded here.
type Config struct {
	// DataDir holds the input exports; all outputs are written next to them.
	DataDir string `mapstructure:"data_dir"`
	// Language is the target language of the filter stage.
	Language  string        `mapstructure:"language"`
	Log       LogConfig     `mapstructure:"log"`
	Files     FilesConfig   `mapstructure:"files"`
	Converter CommandConfig `mapstructure:"converter"`
	Merger    CommandConfig `mapstructure:"merger"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// FilesConfig names the files inside the data directory.
type FilesConfig struct {
	WOS       string `mapstructure:"wos"`
	Scopus    string `mapstructure:"scopus"`
	Converted string `mapstructure:"converted"`
	Merged    string `mapstructure:"merged"`
	Filtered  string `mapstructure:"filtered"`
	Report    string `mapstructure:"report"`
	Summary   string `mapstructure:"summary"`
}

// CommandConfig describes an external collaborator. The template is a
// command line with placeholders, like "{{ input }}", filled in per run with
// shell quoted values. A zero timeout waits for the program indefinitely.
type CommandConfig struct {
	Template string        `mapstructure:"template"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Placeholders each collaborator template is expected to use.
var (
	ConverterPlaceholders = []string{"input", "output"}
	MergerPlaceholders    = []string{"wos", "scopus", "output"}
)

// quotedPlaceholder finds placeholders wrapped in quotes; values are quoted
// when filled in.
var quotedPlaceholder = regexp.MustCompile(`["']\{\{`)

var defaults = map[string]any{
	"data_dir":           ".",
	"language":           "English",
	"log.level":          "INFO",
	"files.wos":          "wos.txt",
	"files.scopus":       "scopus.csv",
	"files.converted":    "scopus_converted_to_wos.txt",
	"files.merged":       "merged_deduplicated.txt",
	"files.filtered":     "english_only.txt",
	"files.report":       "workflow_complete_report.txt",
	"files.summary":      "workflow_summary.json",
	"converter.template": "python3 scopus_to_wos_converter.py {{ input }} {{ output }} --log-level WARNING",
	"converter.timeout":  "0s",
	"merger.template":    "python3 merge_deduplicate.py {{ wos }} {{ scopus }} {{ output }} --log-level WARNING",
	"merger.timeout":     "0s",
}

// DefaultPath returns the config file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "workflow.yaml")
}

// Path returns the path of a configured file inside the data directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string
	if _, err := ParseLevel(c.Log.Level); err != nil {
		warnings = append(warnings, fmt.Sprintf("log level %q is not one of DEBUG, INFO, WARNING, ERROR", c.Log.Level))
	}
	if strings.TrimSpace(c.Language) == "" {
		warnings = append(warnings, "language is empty, no record will match")
	}
	for _, cc := range []struct {
		name         string
		cmd          CommandConfig
		placeholders []string
	}{
		{"converter", c.Converter, ConverterPlaceholders},
		{"merger", c.Merger, MergerPlaceholders},
	} {
		if strings.TrimSpace(cc.cmd.Template) == "" {
			warnings = append(warnings, fmt.Sprintf("%s template is empty", cc.name))
			continue
		}
		for _, p := range cc.placeholders {
			if !strings.Contains(cc.cmd.Template, p) {
				warnings = append(warnings, fmt.Sprintf("%s template does not mention %q", cc.name, p))
			}
		}
		if quotedPlaceholder.MatchString(cc.cmd.Template) {
			warnings = append(warnings, fmt.Sprintf("%s template quotes a placeholder, values are quoted already", cc.name))
		}
		if cc.cmd.Timeout < 0 {
			warnings = append(warnings, fmt.Sprintf("%s timeout %s is negative", cc.name, cc.cmd.Timeout))
		}
	}
	seen := make(map[string]string)
	for _, f := range []struct{ key, name string }{
		{"wos", c.Files.WOS},
		{"scopus", c.Files.Scopus},
		{"converted", c.Files.Converted},
		{"merged", c.Files.Merged},
		{"filtered", c.Files.Filtered},
		{"report", c.Files.Report},
		{"summary", c.Files.Summary},
	} {
		if other, ok := seen[f.name]; ok {
			warnings = append(warnings, fmt.Sprintf("files.%s and files.%s are both %q", other, f.key, f.name))
		}
		seen[f.name] = f.key
	}
	return warnings
}

// Load reads configuration from file and environment. An empty path uses
// DefaultPath if that file exists, and defaults only otherwise. An explicitly
// given path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path == "" {
		if _, err := os.Stat(DefaultPath()); err == nil {
			path = DefaultPath()
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

var errUnknownLevel = errors.New("unknown log level")

// ParseLevel maps DEBUG, INFO, WARNING and ERROR, in any case, to logrus
// levels.
func ParseLevel(s string) (logrus.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return logrus.DebugLevel, nil
	case "INFO":
		return logrus.InfoLevel, nil
	case "WARNING", "WARN":
		return logrus.WarnLevel, nil
	case "ERROR":
		return logrus.ErrorLevel, nil
	}
	return logrus.InfoLevel, fmt.Errorf("%w: %q", errUnknownLevel, s)
}

// NewLogger returns a logger writing timestamped text lines to w.
func NewLogger(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger, nil
}
