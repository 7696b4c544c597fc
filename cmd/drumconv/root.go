package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/drumconv"
)

var (
	verbose    bool
	mapRef     string
	configPath string
)

// rootCmd represents the base command. Given an input and an output it
// converts one file, like the convert subcommand.
var rootCmd = &cobra.Command{
	Use:   "drumconv <input> <output>",
	Short: "Translate drum notes of MIDI files between drum maps",
	Long: `drumconv rewrites the drum notes of Standard MIDI Files from one
drum map to another (by default EZdrummer 3 to the PV edition map).
Timing, velocities and every non-note event are kept as they are.`,
	Args:          cobra.ExactArgs(2),
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
	RunE: runConvert,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&mapRef, "map", "", "Drum map: a built-in name or a YAML file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: drumconv.yaml found upwards from the working directory)")
}

// projectConfig returns the --config file, or the one found from the working
// directory. A missing config is not an error unless --config names it.
func projectConfig() (*drumconv.Config, error) {
	path := configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		found, err := drumconv.FindConfig(wd)
		if errors.Is(err, drumconv.ErrConfigNotFound) {
			return &drumconv.Config{}, nil
		}
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg, err := drumconv.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("using config", "path", path)
	return cfg, nil
}

// options builds the service options from the config file and global flags.
// Flags win over the config file.
func options(cfg *drumconv.Config, extra ...drumconv.Option) []drumconv.Option {
	opts := append([]drumconv.Option{drumconv.WithLogger(slog.Default())}, cfg.Options()...)
	if mapRef != "" {
		opts = append(opts, drumconv.WithMap(mapRef))
	}
	return append(opts, extra...)
}
