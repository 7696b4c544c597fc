package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/drumconv"
	"github.com/aretw0/drumconv/pkg/midifile"
)

func main() {
	count := flag.Int("count", 1000, "Number of MIDI files to generate")
	bars := flag.Int("bars", 64, "Bars of sixteenth notes per file")
	keep := flag.Bool("keep", false, "Keep the benchmark directory after running")
	flag.Parse()

	// 1. Setup Namespace
	benchDir, err := os.MkdirTemp("", "drumconv_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	songs := filepath.Join(benchDir, "songs")
	if err := os.MkdirAll(songs, 0755); err != nil {
		panic(err)
	}

	fmt.Printf("Generating %d files in %s...\n", *count, songs)
	startGen := time.Now()
	for i := 0; i < *count; i++ {
		data, err := midifile.Encode(groove(*bars))
		if err != nil {
			panic(err)
		}
		filename := filepath.Join(songs, fmt.Sprintf("groove_%d.mid", i))
		if err := os.WriteFile(filename, data, 0644); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	// Run 1: one worker
	fmt.Println("Running Batch (Run 1 - Sequential)...")
	start := time.Now()
	batch, err := drumconv.ConvertBatch(ctx, songs, "", filepath.Join(benchDir, "seq"),
		drumconv.WithLogger(logger),
		drumconv.WithWorkers(1),
	)
	if err != nil {
		panic(err)
	}
	sequential := time.Since(start)
	fmt.Printf("Run 1 Result: %v (%s)\n", sequential, drumconv.Describe(batch.Report))

	// Run 2: default worker count
	fmt.Println("Running Batch (Run 2 - Concurrent)...")
	start = time.Now()
	batch, err = drumconv.ConvertBatch(ctx, songs, "", filepath.Join(benchDir, "par"),
		drumconv.WithLogger(logger),
	)
	if err != nil {
		panic(err)
	}
	concurrent := time.Since(start)
	fmt.Printf("Run 2 Result: %v (%s)\n", concurrent, drumconv.Describe(batch.Report))

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d files, %d bars each):\n", *count, *bars)
	fmt.Printf("  Sequential: %v\n", sequential)
	fmt.Printf("  Concurrent: %v\n", concurrent)
	fmt.Printf("--------------------------------------------------\n")
}

// kit holds notes of the source map: kick, snare, closed hi-hat, ride, crash.
var kit = []uint8{36, 38, 42, 51, 49}

// groove builds a single drum track of sixteenth notes with random hits.
func groove(bars int) *midifile.Document {
	const division = 480
	const step = division / 4

	events := []midifile.Event{
		{Message: midifile.MetaMessage{Kind: midifile.StatusMeta, Type: midifile.MetaTrackName, Data: []byte("Drums")}},
		{Message: midifile.MetaMessage{Kind: midifile.StatusMeta, Type: midifile.MetaTempo, Data: []byte{0x07, 0xA1, 0x20}}},
	}
	var wait uint32
	for i := 0; i < bars*16; i++ {
		key := kit[rand.IntN(len(kit))]
		vel := uint8(40 + rand.IntN(87))
		events = append(events,
			midifile.Event{Delta: wait, Message: midifile.NoteOn{Channel: 9, Key: key, Velocity: vel}},
			midifile.Event{Delta: step / 2, Message: midifile.NoteOff{Channel: 9, Key: key}},
		)
		wait = step / 2
	}
	events = append(events, midifile.Event{Message: midifile.MetaMessage{Kind: midifile.StatusMeta, Type: midifile.MetaEndOfTrack, Data: []byte{}}})

	return &midifile.Document{
		Header: midifile.Header{Format: 0, Division: division},
		Tracks: []midifile.Track{{Events: events}},
	}
}
