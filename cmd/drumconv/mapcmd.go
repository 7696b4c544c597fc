package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/drumconv"
	"github.com/aretw0/drumconv/pkg/core"
	"github.com/aretw0/drumconv/pkg/drummap"
)

var mapJSON bool

type mapEntry struct {
	From     core.NoteName `json:"from"`
	FromID   uint8         `json:"from_id"`
	To       core.NoteName `json:"to"`
	ToID     uint8         `json:"to_id"`
	Category string        `json:"category"`
	Label    string        `json:"label,omitempty"`
}

type mapListing struct {
	Name      string          `json:"name"`
	Builtin   []string        `json:"builtin"`
	Entries   []mapEntry      `json:"entries"`
	Overrides []core.Override `json:"overrides,omitempty"`
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Print the effective drum map",
	Long: `Map prints every source note of the drum map in effect (--map, the
config file or the built-in default), its destination and the kit piece
it belongs to, followed by notes claimed by more than one kit piece.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := projectConfig()
		if err != nil {
			return err
		}
		table, err := drumconv.LoadTable(options(cfg)...)
		if err != nil {
			return err
		}

		listing := mapListing{Name: table.Name(), Builtin: drummap.Names(), Overrides: table.Overrides()}
		for _, e := range table.Entries() {
			listing.Entries = append(listing.Entries, mapEntry{
				From:     e.From,
				FromID:   uint8(core.ToID(e.From)),
				To:       e.To,
				ToID:     uint8(core.ToID(e.To)),
				Category: e.Category,
				Label:    e.Label,
			})
		}

		w := cmd.OutOrStdout()
		if mapJSON {
			encoder := json.NewEncoder(w)
			encoder.SetIndent("", "  ")
			return encoder.Encode(listing)
		}

		fmt.Fprintf(w, "map %s (%d notes)\n", listing.Name, len(listing.Entries))
		for _, e := range listing.Entries {
			fmt.Fprintf(w, "  %-4s %3d -> %-4s %3d  %s", e.From, e.FromID, e.To, e.ToID, e.Category)
			if e.Label != "" {
				fmt.Fprintf(w, " (%s)", e.Label)
			}
			fmt.Fprintln(w)
		}
		for _, o := range listing.Overrides {
			fmt.Fprintf(w, "override: %s %s -> %s replaced by %s -> %s\n", o.From, o.Loser, o.LoserTo, o.Winner, o.WinnerTo)
		}
		return nil
	},
}

var mapValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a drum map file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		table, err := drummap.Parse(data)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: map %q is valid, %d notes, %d overrides\n",
			args[0], table.Name(), table.Len(), len(table.Overrides()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.AddCommand(mapValidateCmd)
	mapCmd.Flags().BoolVar(&mapJSON, "json", false, "Output in JSON format")
}
