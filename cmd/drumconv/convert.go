package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/drumconv"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert one MIDI file",
	Long:  `Convert translates the drum notes of <input> and writes the result to <output>.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	in, out := args[0], args[1]

	cfg, err := projectConfig()
	if err != nil {
		return err
	}

	rep, err := drumconv.ConvertFile(cmd.Context(), in, out, options(cfg)...)
	if err != nil {
		return err
	}

	slog.Debug("report", "input", in, "summary", drumconv.Describe(rep))
	for id, n := range rep.Unmapped {
		slog.Debug("unmapped note", "note", id.String(), "id", uint8(id), "count", n)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted MIDI file saved to %s\n", out)
	return nil
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
