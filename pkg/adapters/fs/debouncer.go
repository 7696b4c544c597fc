package fs

import (
	"sync"
	"time"

	"github.com/aretw0/drumconv/pkg/core"
)

// debouncer coalesces bursts of events on the same path. An editor saving a
// file typically produces create, write and chmod in quick succession; only
// one event per path leaves the debouncer once the path has been quiet for
// the delay.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	stopped bool
	timers  map[string]*time.Timer
	pending map[string]core.Event
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]core.Event),
	}
}

// merge keeps CREATE when a freshly created file is then written.
func merge(prev, next core.Event) core.Event {
	if prev.Type == core.EventCreate && next.Type == core.EventModify {
		next.Type = core.EventCreate
	}
	return next
}

func (d *debouncer) add(e core.Event, emit func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if prev, ok := d.pending[e.Path]; ok {
		e = merge(prev, e)
	}
	d.pending[e.Path] = e

	if t, ok := d.timers[e.Path]; ok && t.Stop() {
		d.wg.Done()
	}

	path := e.Path
	d.wg.Add(1)
	d.timers[path] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		ev, ok := d.pending[path]
		delete(d.pending, path)
		delete(d.timers, path)
		d.mu.Unlock()

		if ok {
			emit(ev)
		}
	})
}

// stopAndWait drops pending events and waits up to timeout for timers that
// already fired.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for path, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, path)
	}
	clear(d.pending)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}
