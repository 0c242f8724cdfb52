package whatsapp

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/dself/internal/logger"
)

// settleDelay lets the exporter finish writing before a file is handed on.
const settleDelay = 500 * time.Millisecond

// Watch calls onExport with the path of every export file created or
// rewritten in the export directory until ctx is done. Bursts of events for
// the same file are coalesced.
func (a *Adapter) Watch(ctx context.Context, onExport func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(a.cfg.ExportDir); err != nil {
		return fmt.Errorf("watch %s: %w", a.cfg.ExportDir, err)
	}
	logger.Info("whatsapp: watching %s for %s", a.cfg.ExportDir, a.cfg.Pattern)

	d := newDebouncer(settleDelay)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if a.Matches(event.Name) {
				d.touch(event.Name)
			}

		case r := <-d.ready:
			if !d.accept(r) {
				continue
			}
			logger.Debug("whatsapp: new export %s", r.name)
			onExport(r.name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("whatsapp: watcher: %v", err)
		}
	}
}

// settled is a file whose events have been quiet for the delay. gen ties
// it to the timer that produced it.
type settled struct {
	name string
	gen  uint64
}

type pendingTimer struct {
	timer *time.Timer
	gen   uint64
}

// debouncer turns bursts of events per file into one settled value. It is
// used from a single goroutine; only the timers send concurrently.
type debouncer struct {
	delay   time.Duration
	seq     uint64
	pending map[string]pendingTimer
	ready   chan settled
	quit    chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]pendingTimer),
		ready:   make(chan settled),
		quit:    make(chan struct{}),
	}
}

// touch restarts the quiet period for name. A timer that already fired
// is superseded rather than re-armed, so it cannot deliver twice.
func (d *debouncer) touch(name string) {
	if p, ok := d.pending[name]; ok {
		p.timer.Stop()
	}
	d.seq++
	s := settled{name: name, gen: d.seq}
	d.pending[name] = pendingTimer{
		gen: s.gen,
		timer: time.AfterFunc(d.delay, func() {
			select {
			case d.ready <- s:
			case <-d.quit:
			}
		}),
	}
}

// accept reports whether s is the latest settle for its file and, if so,
// clears it.
func (d *debouncer) accept(s settled) bool {
	p, ok := d.pending[s.name]
	if !ok || p.gen != s.gen {
		return false
	}
	delete(d.pending, s.name)
	return true
}

// stop cancels pending timers and releases any blocked on delivery.
func (d *debouncer) stop() {
	close(d.quit)
	for _, p := range d.pending {
		p.timer.Stop()
	}
}
