// wos-workflow runs the complete pipeline over a data directory holding a
// WOS export (wos.txt) and a Scopus export (scopus.csv): Scopus conversion,
// merge and deduplication, language filter and the final report.
//
// Converter and merger are external programs, configured as command line
// templates in $XDG_CONFIG_HOME/woskit/workflow.yaml or through WOSKIT_
// environment variables, e.g.
//
//	converter:
//	  template: "python3 scopus_to_wos_converter.py {{ input }} {{ output }}"
//	  timeout: 2h
//	merger:
//	  template: "python3 merge_deduplicate.py {{ wos }} {{ scopus }} {{ output }}"
//
// Paths are shell quoted when filled in; do not quote placeholders. Without
// a timeout, the workflow waits for each program as long as it runs.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/woskit/woskit"
	"github.com/woskit/woskit/config"
	"github.com/woskit/woskit/workflow"
)

func main() {
	var (
		configPath string
		language   string
		logLevel   string
		skipCheck  bool
	)
	rootCmd := &cobra.Command{
		Use:          "wos-workflow DATA_DIR",
		Short:        "Convert, merge, deduplicate and language filter WOS and Scopus exports",
		Version:      woskit.Version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.DataDir = args[0]
			}
			if cmd.Flags().Changed("language") {
				cfg.Language = language
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			logger, err := config.NewLogger(cfg.Log.Level, os.Stderr)
			if err != nil {
				return err
			}
			// commands echoed by the runner go to the debug log, uncolored
			color.NoColor = true
			echo := logger.WriterLevel(logrus.DebugLevel)
			defer echo.Close()
			log.SetFlags(0)
			log.SetOutput(echo)
			for _, warning := range cfg.Validate() {
				logger.Warn(warning)
			}
			wf := workflow.New(cfg, logger)
			wf.Stdout = cmd.OutOrStdout()
			if skipCheck {
				wf.Deps = nil
			}
			s, err := wf.Run()
			if err != nil {
				var se *workflow.StageError
				if errors.As(err, &se) && strings.TrimSpace(se.Output) != "" {
					logger.WithField("stage", se.Stage).Errorf("program output:\n%s", se.Output)
				}
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "\nrecommended for analysis: %s (%d records)\n",
				s.Files.Filtered, s.Filtered.Total)
			return nil
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (default "+config.DefaultPath()+")")
	rootCmd.Flags().StringVarP(&language, "language", "l", "English", "Target language")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "INFO", "Log level: DEBUG, INFO, WARNING, ERROR")
	rootCmd.Flags().BoolVar(&skipCheck, "skip-check", false, "Do not check for converter and merger programs on PATH")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
