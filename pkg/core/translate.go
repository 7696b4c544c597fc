package core

import (
	"github.com/aretw0/drumconv/pkg/midifile"
)

// Report summarizes one translation run.
type Report struct {
	Tracks     int `json:"tracks"`
	Events     int `json:"events"`
	Notes      int `json:"notes"`
	Translated int `json:"translated"`
	// Unmapped counts note events left unchanged, by note.
	Unmapped map[NoteID]int `json:"unmapped,omitempty"`
	// PerCategory counts translated note events, by owning category.
	PerCategory map[string]int `json:"per_category,omitempty"`
}

func newReport() Report {
	return Report{
		Unmapped:    make(map[NoteID]int),
		PerCategory: make(map[string]int),
	}
}

// Add accumulates other into r.
func (r *Report) Add(other Report) {
	if r.Unmapped == nil {
		r.Unmapped = make(map[NoteID]int)
	}
	if r.PerCategory == nil {
		r.PerCategory = make(map[string]int)
	}
	r.Tracks += other.Tracks
	r.Events += other.Events
	r.Notes += other.Notes
	r.Translated += other.Translated
	for id, n := range other.Unmapped {
		r.Unmapped[id] += n
	}
	for c, n := range other.PerCategory {
		r.PerCategory[c] += n
	}
}

// Translate rewrites, in place, the key of every note on and note off event
// of doc whose name the table maps. Nothing else in doc changes: deltas,
// velocities, channels, event order and every other message stay as they
// were decoded.
func Translate(doc *midifile.Document, table *MappingTable) Report {
	rep := newReport()
	rep.Tracks = len(doc.Tracks)

	for ti := range doc.Tracks {
		events := doc.Tracks[ti].Events
		rep.Events += len(events)

		for ei := range events {
			switch m := events[ei].Message.(type) {
			case midifile.NoteOn:
				m.Key = translateKey(m.Key, table, &rep)
				events[ei].Message = m
			case midifile.NoteOff:
				m.Key = translateKey(m.Key, table, &rep)
				events[ei].Message = m
			case midifile.ChannelMessage, midifile.MetaMessage:
				// passed through untouched
			}
		}
	}

	return rep
}

func translateKey(key uint8, table *MappingTable, rep *Report) uint8 {
	rep.Notes++

	src := ToName(NoteID(key))
	e, ok := table.entries[src]
	if !ok {
		rep.Unmapped[NoteID(key)]++
		return key
	}

	rep.Translated++
	rep.PerCategory[e.Category]++
	return uint8(ToID(e.To))
}
