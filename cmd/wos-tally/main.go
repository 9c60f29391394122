// wos-tally counts records by document type and language in WOS tagged
// files, without parsing them into records.
//
//	$ wos-tally wos.txt merged_deduplicated.txt.zst
//	wos.txt                         total    412  article    301  review     77  other     34
//	...
package main

import (
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"github.com/woskit/woskit"
	"github.com/woskit/woskit/wos"
)

func main() {
	var (
		jsonOutput bool
		languages  bool
	)
	rootCmd := &cobra.Command{
		Use:          "wos-tally FILE...",
		Short:        "Count records by document type and language",
		Version:      woskit.Version,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				w   = cmd.OutOrStdout()
				enc = json.NewEncoder(w)
			)
			for _, fn := range args {
				t, err := wos.TallyFile(fn)
				if err != nil {
					return err
				}
				if jsonOutput {
					if err := enc.Encode(struct {
						File string `json:"file"`
						wos.Tally
					}{fn, t}); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(w, "%-30s  total %6d  article %6d  review %6d  other %6d\n",
					fn, t.Total, t.Article, t.Review, t.Other)
				if languages {
					for _, e := range t.Languages.MostCommon() {
						fmt.Fprintf(w, "    %-20s %6d\n", e.Label, e.Count)
					}
				}
			}
			return nil
		},
	}
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output one JSON object per file")
	rootCmd.Flags().BoolVarP(&languages, "languages", "l", false, "Include the language distribution")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
