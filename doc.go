// Package drumconv is the Composition Root for the drum map converter.
//
// It connects the translation core (pkg/core) with the Standard MIDI File
// codec (pkg/midifile), the drum map loader (pkg/drummap) and the filesystem
// adapter (pkg/adapters/fs).
//
// A drum map lists, per kit piece, which note a source kit plays and which
// note the target kit expects for the same sound. Converting a file rewrites
// the key of every note on and note off found in the map. Everything else in
// the file is kept byte for byte: timing, velocities, channels, meta events,
// system exclusive data and unknown chunks.
//
// Features:
//
//   - **Lossless Codec**: Files are re-encoded with the same events, only the drum keys change.
//   - **Built-in Maps**: The EZdrummer 3 to Pro Drums (PV) map ships embedded.
//   - **Custom Maps**: YAML drum maps, validated against a JSON Schema.
//   - **Batch Mode**: Whole folders converted concurrently, mirroring the layout.
//   - **Watch Mode**: Files converted as soon as a DAW writes them.
//
// Usage:
//
//	rep, err := drumconv.ConvertFile(ctx, "groove.mid", "groove-pv.mid",
//		drumconv.WithMap("ezd3-pv"),
//	)
//
//	fmt.Println(drumconv.Describe(rep))
package drumconv
