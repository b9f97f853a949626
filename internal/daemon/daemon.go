// Package daemon runs the pointer poll loop: sample, detect, track.
package daemon

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/fakeyudi/kado/internal/config"
	"github.com/fakeyudi/kado/internal/hotspot"
	"github.com/fakeyudi/kado/internal/tracker"
)

// Pointer samples the pointer position in root window coordinates.
type Pointer interface {
	Pointer() (x, y int16, err error)
}

// Options configures a Daemon. Zero values are usable.
type Options struct {
	Logger  *log.Logger // nil discards
	Verbose bool        // log every tracker transition
}

// Daemon owns the tracker and is driven by a single goroutine.
type Daemon struct {
	cfg      *config.Config
	regions  []hotspot.Region
	detector *hotspot.Detector
	tracker  *tracker.Tracker
	pointer  Pointer
	logger   *log.Logger
	verbose  bool
}

// New returns a Daemon for a fixed screen layout.
func New(cfg *config.Config, regions []hotspot.Region, p Pointer, d tracker.Dispatcher, opts Options) *Daemon {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Daemon{
		cfg:      cfg,
		regions:  regions,
		detector: hotspot.NewDetector(regions, cfg),
		tracker:  tracker.New(d),
		pointer:  p,
		logger:   logger,
		verbose:  opts.Verbose,
	}
}

// Config returns the configuration currently in effect.
func (d *Daemon) Config() *config.Config {
	return d.cfg
}

// Tracker exposes the dwell state for inspection.
func (d *Daemon) Tracker() *tracker.Tracker {
	return d.tracker
}

// Tick runs one sample-detect-update cycle at now. A pointer query error is
// returned unchanged and should end the loop.
func (d *Daemon) Tick(now time.Time) error {
	x, y, err := d.pointer.Pointer()
	if err != nil {
		return err
	}
	key, ok := d.detector.Detect(x, y)

	prevKey, prevOK := d.tracker.Current()
	prevState := d.tracker.State()
	d.tracker.Update(d.cfg, key, ok, now)

	if d.verbose {
		d.logTransition(prevKey, prevOK, prevState)
	}
	return nil
}

func (d *Daemon) logTransition(prevKey hotspot.Key, prevOK bool, prevState tracker.State) {
	key, ok := d.tracker.Current()
	state := d.tracker.State()
	switch {
	case prevOK && (!ok || key != prevKey):
		d.logger.Printf("daemon: left %s", prevKey)
		if ok {
			d.logger.Printf("daemon: entered %s", key)
		}
	case !prevOK && ok:
		d.logger.Printf("daemon: entered %s", key)
	case prevState == tracker.Entered && state == tracker.Fired:
		d.logger.Printf("daemon: dwell reached on %s", key)
	}
}

// Apply swaps in a reloaded configuration. The screen layout and the
// tracker's current occupancy are kept.
func (d *Daemon) Apply(cfg *config.Config) {
	d.cfg = cfg
	d.detector = hotspot.NewDetector(d.regions, cfg)
}

// Run polls at the configured refresh rate until ctx is done, which returns
// nil, or a tick fails. Configs received on reloads are applied between
// ticks; errors from reloadErrs are logged. Either channel may be nil.
func (d *Daemon) Run(ctx context.Context, reloads <-chan *config.Config, reloadErrs <-chan error) error {
	interval := d.cfg.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Printf("daemon: polling %d screen(s) every %s", len(d.regions), interval)

	for {
		select {
		case <-ctx.Done():
			return nil

		case cfg := <-reloads:
			d.Apply(cfg)
			d.logIgnored(cfg)
			if next := cfg.Interval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
			d.logger.Printf("daemon: reloaded %s", cfg.Path)

		case err := <-reloadErrs:
			d.logger.Printf("daemon: reload failed, keeping previous config: %v", err)

		case now := <-ticker.C:
			if err := d.Tick(now); err != nil {
				return err
			}
		}
	}
}

func (d *Daemon) logIgnored(cfg *config.Config) {
	if !d.verbose {
		return
	}
	for _, entry := range cfg.Ignored {
		d.logger.Printf("daemon: ignoring malformed override [%s]", entry)
	}
}
