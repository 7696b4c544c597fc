package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/drumconv"
)

var (
	watchOut     string
	watchPattern string
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Convert MIDI files as they appear or change",
	Long: `Watch converts every file under <dir> matching --pattern into --out
whenever it is created or saved, until interrupted. Existing outputs are
replaced. Files inside --out are never picked up again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := projectConfig()
		if err != nil {
			return err
		}

		pattern := watchPattern
		if pattern == "" {
			pattern = cfg.Pattern
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := cmd.OutOrStdout()
		onResult := func(r drumconv.WatchResult) {
			if r.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed %s: %s\n", r.Event.Path, describe(r.Err))
				return
			}
			fmt.Fprintf(w, "Converted MIDI file saved to %s\n", r.Output)
		}

		err = drumconv.Watch(ctx, args[0], pattern, watchOut, onResult, options(cfg)...)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "Output directory (required)")
	watchCmd.Flags().StringVarP(&watchPattern, "pattern", "p", "", "Files to convert (default \""+drumconv.DefaultPattern+"\")")
	_ = watchCmd.MarkFlagRequired("out")
}
