package core

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/drumconv/pkg/midifile"
)

// ServiceConfig holds the optional settings of a Service.
type ServiceConfig struct {
	Logger *slog.Logger
	// Workers bounds concurrent conversions in ConvertAll. Zero means GOMAXPROCS.
	Workers int
}

// Service runs the decode, translate, encode pipeline against a Repository.
// A Service is safe for concurrent use; every run owns its own Document and
// shares the read-only MappingTable.
type Service struct {
	repo    Repository
	table   *MappingTable
	logger  *slog.Logger
	workers int

	mu       sync.RWMutex
	runs     int
	failures int
	last     string
}

// NewService creates a new Service.
func NewService(repo Repository, table *MappingTable, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Service{
		repo:    repo,
		table:   table,
		logger:  logger,
		workers: workers,
	}
}

// Table returns the mapping table the service translates with.
func (s *Service) Table() *MappingTable {
	return s.table
}

// ConvertBytes translates an in-memory Standard MIDI File.
func (s *Service) ConvertBytes(ctx context.Context, data []byte) ([]byte, Report, error) {
	return s.convert(ctx, "<memory>", data)
}

func (s *Service) convert(ctx context.Context, name string, data []byte) ([]byte, Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, Report{}, ioFailed(err, "convert", name)
	}

	doc, err := midifile.Decode(data)
	if err != nil {
		return nil, Report{}, decodeFailed(err, name)
	}

	rep := Translate(doc, s.table)

	out, err := midifile.Encode(doc)
	if err != nil {
		return nil, rep, encodeFailed(err, name)
	}
	return out, rep, nil
}

// Convert reads in, translates it and stores the result at out. Nothing is
// written when any stage fails.
func (s *Service) Convert(ctx context.Context, in, out string) (Report, error) {
	rep, err := s.convertFile(ctx, in, out)
	s.record(in, err)
	if err != nil {
		return rep, err
	}

	s.logger.Debug("converted",
		"input", in,
		"output", out,
		"tracks", rep.Tracks,
		"notes", rep.Notes,
		"translated", rep.Translated,
	)
	if len(rep.Unmapped) > 0 {
		s.logger.Debug("notes left unchanged", "input", in, "distinct", len(rep.Unmapped))
	}
	return rep, nil
}

func (s *Service) convertFile(ctx context.Context, in, out string) (Report, error) {
	data, err := s.repo.Load(ctx, in)
	if err != nil {
		return Report{}, ioFailed(err, "read", in)
	}

	converted, rep, err := s.convert(ctx, in, data)
	if err != nil {
		return rep, err
	}

	if err := s.repo.Store(ctx, out, converted); err != nil {
		return rep, ioFailed(err, "write", out)
	}
	return rep, nil
}

// BatchReport is the outcome of ConvertAll.
type BatchReport struct {
	Files   []string `json:"files"`
	Skipped []string `json:"skipped,omitempty"`
	Report  Report   `json:"report"`
}

// ConvertAll converts every file matching pattern, storing each at
// target(path). Files are converted concurrently, at most Workers at a time.
// The first failure cancels the remaining conversions and is returned.
// Files whose output already exists are skipped when the repository
// refuses to overwrite them. Listed paths for which exclude returns true
// are left out entirely; exclude may be nil.
func (s *Service) ConvertAll(ctx context.Context, pattern string, target func(string) string, exclude func(string) bool) (BatchReport, error) {
	lister, ok := s.repo.(Listable)
	if !ok {
		return BatchReport{}, ErrNotListable
	}

	paths, err := lister.List(ctx, pattern)
	if err != nil {
		return BatchReport{}, ioFailed(err, "list", pattern)
	}

	var (
		mu    sync.Mutex
		batch = BatchReport{Report: newReport()}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, p := range paths {
		if exclude != nil && exclude(p) {
			s.logger.Debug("excluded from batch", "input", p)
			continue
		}
		g.Go(func() error {
			rep, err := s.Convert(gctx, p, target(p))
			mu.Lock()
			defer mu.Unlock()

			if errors.Is(err, ErrOutputExists) {
				s.logger.Debug("skipping, output exists", "input", p)
				batch.Skipped = append(batch.Skipped, p)
				return nil
			}
			if err != nil {
				return err
			}
			batch.Files = append(batch.Files, p)
			batch.Report.Add(rep)
			return nil
		})
	}

	err = g.Wait()
	sort.Strings(batch.Files)
	sort.Strings(batch.Skipped)
	return batch, err
}

// Watch observes changes in the repository if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, ErrNotWatchable
	}
	return w.Watch(ctx, pattern)
}

func (s *Service) record(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	s.last = path
	if err != nil {
		s.failures++
	}
}
