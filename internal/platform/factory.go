package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/drumconv/pkg/adapters/fs"
	"github.com/aretw0/drumconv/pkg/core"
	"github.com/aretw0/drumconv/pkg/drummap"
)

// New creates a conversion service rooted at dir.
//
//	svc, err := drumconv.New("./songs", drumconv.WithMap("my-kit.yaml"))
func New(dir string, opts ...Option) (*core.Service, error) {
	o := apply(opts)

	repo, err := initRepository(dir, o)
	if err != nil {
		return nil, err
	}

	table, err := loadTable(o)
	if err != nil {
		return nil, err
	}

	return core.NewService(repo, table, core.ServiceConfig{
		Logger:  o.logger,
		Workers: o.workers,
	}), nil
}

// Init returns the repository New would use for dir, creating dir unless
// WithMustExist is set.
func Init(dir string, opts ...Option) (core.Repository, error) {
	return initRepository(dir, apply(opts))
}

// LoadTable returns the mapping table selected by opts.
func LoadTable(opts ...Option) (*core.MappingTable, error) {
	return loadTable(apply(opts))
}

func initRepository(dir string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	repo := fs.NewRepository(fs.Config{
		Path:         dir,
		MustExist:    o.mustExist,
		Overwrite:    o.overwrite,
		Debounce:     o.debounce,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
	})
	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func loadTable(o *options) (*core.MappingTable, error) {
	if o.table != nil {
		return o.table, nil
	}

	table, err := drummap.Load(o.mapRef)
	if err != nil {
		return nil, fmt.Errorf("load drum map: %w", err)
	}

	for _, ov := range table.Overrides() {
		o.logger.Debug("mapping overridden",
			"note", ov.From,
			"category", ov.Loser,
			"by", ov.Winner,
			"to", ov.WinnerTo,
		)
	}
	return table, nil
}
