// wos-filter keeps the records of a WOS tagged export in a given language.
//
//	$ wos-filter merged_deduplicated.txt english_only.txt -l English
//
// Next to the output, a report (english_only_filter_report.txt) is written
// and echoed to stdout. Input and output may be gzip or zstd compressed.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/woskit/woskit"
	"github.com/woskit/woskit/config"
	"github.com/woskit/woskit/langfilter"
	"github.com/woskit/woskit/workflow"
)

// errLogged signals a failure that has already been logged.
var errLogged = errors.New("failed")

func main() {
	var (
		language  string
		logLevel  string
		statsJSON bool
	)
	rootCmd := &cobra.Command{
		Use:           "wos-filter INPUT OUTPUT",
		Short:         "Keep records of a WOS tagged file in a given language",
		Version:       woskit.Version,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := config.NewLogger(logLevel, os.Stderr)
			if err != nil {
				return err
			}
			_, err = workflow.RunFilter(workflow.FilterOptions{
				Input:     args[0],
				Output:    args[1],
				Language:  language,
				StatsJSON: statsJSON,
				Logger:    logger,
				Stdout:    cmd.OutOrStdout(),
			})
			if err == nil {
				return nil
			}
			// empty results are logged as warnings by the filter itself
			if !errors.Is(err, workflow.ErrNoRecords) && !errors.Is(err, workflow.ErrNoMatches) {
				logger.WithField("stage", workflow.StageFilter).Error(err)
			}
			return errLogged
		},
	}
	rootCmd.Flags().StringVarP(&language, "language", "l", langfilter.DefaultLanguage, "Target language")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "INFO", "Log level: DEBUG, INFO, WARNING, ERROR")
	rootCmd.Flags().BoolVar(&statsJSON, "stats-json", false, "Also write statistics as JSON next to the output")
	if err := rootCmd.Execute(); err != nil {
		if err != errLogged {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
