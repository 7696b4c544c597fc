// Package midifile reads and writes Standard MIDI Files without losing
// information.
//
// A file is decoded into a Document: the header chunk, one Track per MTrk
// chunk, and any other chunk kept verbatim. Every event keeps its delta-time
// and an explicit status; running status found in the input is expanded on
// decode, and the encoder never compresses it back.
//
// Encoding a decoded Document reproduces the input byte for byte, except that
// running status is expanded and non-canonical variable-length integers are
// rewritten in their shortest form. Neither changes the meaning of any event.
//
// Usage:
//
//	doc, err := midifile.Decode(data)
//	if err != nil {
//		return err
//	}
//	out, err := midifile.Encode(doc)
package midifile
