package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/spf13/cobra"

	"github.com/aretw0/drumconv"
	"github.com/aretw0/drumconv/pkg/core"
	"github.com/aretw0/drumconv/pkg/midifile"
)

var inspectJSON bool

// trackSummary describes one track of an inspected file.
type trackSummary struct {
	Index    int    `json:"index"`
	Name     string `json:"name,omitempty"`
	Events   int    `json:"events"`
	Notes    int    `json:"notes"`
	Duration uint64 `json:"duration_ticks"`
}

// noteCount is one line of the note histogram.
type noteCount struct {
	Note     core.NoteName `json:"note"`
	ID       uint8         `json:"id"`
	Count    int           `json:"count"`
	Category string        `json:"category,omitempty"`
	To       core.NoteName `json:"to,omitempty"`
}

type inspection struct {
	File     string         `json:"file"`
	Format   uint16         `json:"format"`
	Division uint16         `json:"division"`
	Map      string         `json:"map"`
	Tracks   []trackSummary `json:"tracks"`
	Chunks   int            `json:"unknown_chunks"`
	Notes    []noteCount    `json:"notes"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize the tracks and drum notes of a MIDI file",
	Long: `Inspect lists the tracks of a MIDI file and counts its note on events
per note, showing which kit piece of the drum map each note belongs to
and where it would be sent.`,
	Args: cobra.ExactArgs(1),
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

		f, err := os.Open(args[0])
		if err != nil {
			return fault.Wrap(err, fmsg.WithDesc("open", "could not open "+args[0]))
		}
		defer f.Close()

		doc, err := midifile.Read(f)
		if err != nil {
			return fault.Wrap(err, ftag.With(ftag.InvalidArgument), fmsg.WithDesc("decode", args[0]+" is not a valid Standard MIDI File"))
		}

		in := inspect(args[0], doc, table)
		w := cmd.OutOrStdout()

		if inspectJSON {
			encoder := json.NewEncoder(w)
			encoder.SetIndent("", "  ")
			return encoder.Encode(in)
		}

		fmt.Fprintf(w, "%s: format %d, %d ticks per quarter, %d tracks\n", in.File, in.Format, in.Division, len(in.Tracks))
		for _, t := range in.Tracks {
			fmt.Fprintf(w, "  track %d %q: %d events, %d notes, %d ticks\n", t.Index, t.Name, t.Events, t.Notes, t.Duration)
		}
		if in.Chunks > 0 {
			fmt.Fprintf(w, "  %d unknown chunks kept as is\n", in.Chunks)
		}
		fmt.Fprintf(w, "notes (map %s):\n", in.Map)
		for _, n := range in.Notes {
			if n.Category == "" {
				fmt.Fprintf(w, "  %-4s %3d  x%d  unmapped\n", n.Note, n.ID, n.Count)
				continue
			}
			fmt.Fprintf(w, "  %-4s %3d  x%d  %s -> %s\n", n.Note, n.ID, n.Count, n.Category, n.To)
		}
		return nil
	},
}

func inspect(file string, doc *midifile.Document, table *core.MappingTable) inspection {
	in := inspection{
		File:     file,
		Format:   doc.Header.Format,
		Division: doc.Header.Division,
		Map:      table.Name(),
		Chunks:   len(doc.Chunks),
	}

	counts := make(map[uint8]int)
	for i, tr := range doc.Tracks {
		ts := trackSummary{Index: i, Name: tr.Name(), Events: len(tr.Events), Duration: tr.Duration()}
		for _, ev := range tr.Events {
			if on, ok := ev.Message.(midifile.NoteOn); ok && on.Velocity > 0 {
				ts.Notes++
				counts[on.Key]++
			}
		}
		in.Tracks = append(in.Tracks, ts)
	}

	for key, n := range counts {
		name := core.ToName(core.NoteID(key))
		nc := noteCount{Note: name, ID: key, Count: n}
		if to, ok := table.Lookup(name); ok {
			nc.To = to
			nc.Category, _ = table.CategoryOf(name)
		}
		in.Notes = append(in.Notes, nc)
	}
	sort.Slice(in.Notes, func(i, j int) bool { return in.Notes[i].ID < in.Notes[j].ID })
	return in
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output in JSON format")
}
