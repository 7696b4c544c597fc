package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lcadapter "github.com/aretw0/drumconv/pkg/adapters/lifecycle"
	"github.com/aretw0/drumconv/pkg/core"
)

// DefaultPattern selects Standard MIDI Files in every subdirectory.
const DefaultPattern = "**/*.{mid,midi,MID,MIDI}"

// ConvertFile converts one file. Relative paths are taken from the working
// directory.
func ConvertFile(ctx context.Context, in, out string, opts ...Option) (core.Report, error) {
	svc, err := New(".", opts...)
	if err != nil {
		return core.Report{}, err
	}
	return svc.Convert(ctx, in, out)
}

// outputMapper mirrors paths relative to a root into outDir.
func outputMapper(outDir string) (func(string) string, error) {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return nil, err
	}
	return func(rel string) string {
		return filepath.Join(abs, filepath.FromSlash(rel))
	}, nil
}

// ConvertBatch converts every file under root matching pattern into outDir,
// keeping the directory layout. Files already inside outDir are never
// inputs, so outDir may live under root.
func ConvertBatch(ctx context.Context, root, pattern, outDir string, opts ...Option) (core.BatchReport, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	target, err := outputMapper(outDir)
	if err != nil {
		return core.BatchReport{}, err
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return core.BatchReport{}, err
	}
	outAbs := target("")
	inOutput := func(rel string) bool {
		return within(filepath.Join(rootAbs, filepath.FromSlash(rel)), outAbs)
	}

	svc, err := New(root, append([]Option{WithMustExist(true)}, opts...)...)
	if err != nil {
		return core.BatchReport{}, err
	}
	return svc.ConvertAll(ctx, pattern, target, inOutput)
}

// WatchResult describes one conversion done by Watch.
type WatchResult struct {
	Event  core.Event
	Output string
	Report core.Report
	Err    error
}

// Watch converts files under root matching pattern into outDir whenever
// they are created or modified, until ctx is cancelled. Every conversion,
// failed or not, is passed to onResult when it is non-nil; a failed file
// does not stop the watch. Outputs are always overwritten.
func Watch(ctx context.Context, root, pattern, outDir string, onResult func(WatchResult), opts ...Option) error {
	if pattern == "" {
		pattern = DefaultPattern
	}

	target, err := outputMapper(outDir)
	if err != nil {
		return err
	}
	outAbs := target("")

	o := apply(opts)
	svcOpts := append([]Option{WithMustExist(true)}, opts...)
	svc, err := New(root, append(svcOpts, WithOverwrite(true))...)
	if err != nil {
		return err
	}

	events, err := svc.Watch(ctx, pattern)
	if err != nil {
		return err
	}

	src := lcadapter.NewSource(events)
	if err := src.Start(ctx); err != nil {
		return err
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	o.logger.Info("watching", "root", rootAbs, "pattern", pattern, "out", outAbs)

	for e := range src.Events() {
		ev, ok := e.(core.Event)
		if !ok {
			continue
		}
		if ev.Type == core.EventDelete {
			o.logger.Debug("ignoring removal", "path", ev.Path)
			continue
		}
		if within(filepath.Join(rootAbs, filepath.FromSlash(ev.Path)), outAbs) {
			continue
		}

		out := target(ev.Path)
		rep, err := svc.Convert(ctx, ev.Path, out)
		if err != nil {
			o.logger.Error("conversion failed", "path", ev.Path, "error", err)
		} else {
			o.logger.Info("converted", "path", ev.Path, "output", out, "translated", rep.Translated)
		}
		if onResult != nil {
			onResult(WatchResult{Event: ev, Output: out, Report: rep, Err: err})
		}
	}

	return nil
}

// within reports whether path is dir or below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator)))
}

// Describe summarizes a report on one line.
func Describe(rep core.Report) string {
	return fmt.Sprintf("%d tracks, %d notes, %d translated, %d distinct notes unmapped",
		rep.Tracks, rep.Notes, rep.Translated, len(rep.Unmapped))
}
