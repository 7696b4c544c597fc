package midifile

import "encoding/binary"

// buildFile assembles a file from raw MTrk bodies. ntrks is written as given
// so tests can declare a count that disagrees with the chunks.
func buildFile(format, ntrks, division uint16, tracks ...[]byte) []byte {
	out := []byte("MThd")
	out = binary.BigEndian.AppendUint32(out, 6)
	out = binary.BigEndian.AppendUint16(out, format)
	out = binary.BigEndian.AppendUint16(out, ntrks)
	out = binary.BigEndian.AppendUint16(out, division)
	for _, body := range tracks {
		out = append(out, "MTrk"...)
		out = binary.BigEndian.AppendUint32(out, uint32(len(body)))
		out = append(out, body...)
	}
	return out
}

// firstTrackOffset is where the body of the first MTrk chunk starts in a
// file built by buildFile.
const firstTrackOffset = 14 + 8

// drumTrack is a typical drum track: a name, a tempo, kick and snare hits and
// the end of track marker. It uses no running status.
var drumTrack = []byte{
	0x00, 0xFF, 0x03, 0x05, 'D', 'r', 'u', 'm', 's', // track name
	0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20, // tempo 500000
	0x00, 0xC9, 0x00, // program change ch 10
	0x00, 0x99, 0x24, 0x64, // note on C1
	0x60, 0x89, 0x24, 0x40, // note off C1
	0x00, 0x99, 0x26, 0x50, // note on D1
	0x83, 0x60, 0x89, 0x26, 0x00, // note off D1, two-byte delta
	0x00, 0xE9, 0x00, 0x40, // pitch bend
	0x00, 0xF0, 0x03, 0x43, 0x12, 0xF7, // sysex
	0x00, 0xFF, 0x2F, 0x00, // end of track
}
