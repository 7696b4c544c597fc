package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/drumconv"
)

var (
	batchOut     string
	batchRoot    string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch [glob]",
	Short: "Convert every matching MIDI file under a directory",
	Long: `Batch converts every file under --root matching the glob (default
"**/*.{mid,midi,MID,MIDI}", or the config file pattern) into --out,
keeping the directory layout. Patterns are relative to --root and
support ** and {a,b}.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := projectConfig()
		if err != nil {
			return err
		}

		pattern := cfg.Pattern
		if len(args) == 1 {
			pattern = args[0]
		}

		var extra []drumconv.Option
		if batchWorkers > 0 {
			extra = append(extra, drumconv.WithWorkers(batchWorkers))
		}

		batch, err := drumconv.ConvertBatch(cmd.Context(), batchRoot, pattern, batchOut, options(cfg, extra...)...)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, f := range batch.Skipped {
			fmt.Fprintf(w, "skipped %s (output exists)\n", f)
		}
		fmt.Fprintf(w, "Converted %d files into %s: %s\n", len(batch.Files), batchOut, drumconv.Describe(batch.Report))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "Output directory (required)")
	batchCmd.Flags().StringVar(&batchRoot, "root", ".", "Directory the glob is relative to")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Concurrent conversions (default: config file or number of CPUs)")
	_ = batchCmd.MarkFlagRequired("out")
}
