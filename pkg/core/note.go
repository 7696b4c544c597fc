package core

import (
	"strconv"
	"strings"
)

// NoteID is the numeric note of a MIDI note message, 0 through 127.
type NoteID uint8

// NoteName is the textual form of a NoteID: a pitch class spelled with
// sharps followed by a signed octave, e.g. "C1", "F#3" or "A#-2".
type NoteName string

const (
	// MaxNoteID is the highest valid note.
	MaxNoteID NoteID = 127

	// MiddleC ("C3") is what ToID returns for names no NoteID produces.
	MiddleC NoteID = 60

	// lowestOctave is the octave of NoteID 0.
	lowestOctave = -2
)

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func (id NoteID) String() string { return string(ToName(id)) }

// ToName returns the name of id: pitch class id%12, octave id/12-2.
func ToName(id NoteID) NoteName {
	return NoteName(pitchClasses[id%12] + strconv.Itoa(int(id)/12+lowestOctave))
}

// ParseName is the checked inverse of ToName. It reports false for any name
// that ToName does not produce for some id in [0,127].
func ParseName(name NoteName) (NoteID, bool) {
	s := string(name)

	pc, plen := -1, 0
	for i, p := range pitchClasses {
		if len(p) > plen && strings.HasPrefix(s, p) {
			pc, plen = i, len(p)
		}
	}
	if pc < 0 {
		return 0, false
	}

	octave, err := strconv.Atoi(s[plen:])
	if err != nil {
		return 0, false
	}

	id := (octave-lowestOctave)*12 + pc
	if id < 0 || id > int(MaxNoteID) {
		return 0, false
	}
	// Rejects spellings Atoi accepts but ToName never writes, like "C+1" or "C01".
	if ToName(NoteID(id)) != name {
		return 0, false
	}
	return NoteID(id), true
}

// ToID returns the NoteID whose name is name, or MiddleC if there is none.
func ToID(name NoteName) NoteID {
	if id, ok := ParseName(name); ok {
		return id
	}
	return MiddleC
}
