// Package config loads the kado TOML file into a typed hotspot catalog.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/fakeyudi/kado/internal/hotspot"
)

// FileName is the config file looked up in the user config directory.
const FileName = "kado.toml"

// DefaultRefreshRate is the pointer sampling frequency in Hz.
const DefaultRefreshRate = 60

// Config is the loaded configuration. It implements hotspot.Resolver.
type Config struct {
	Path        string
	RefreshRate uint32

	global  map[hotspot.Position]hotspot.Spec
	screens map[string]map[hotspot.Position]hotspot.Spec

	// Ignored lists per-screen entries that were dropped as malformed,
	// as "screen" or "screen.position".
	Ignored []string
}

// table is the on-disk schema of one hotspot table.
type table struct {
	OnEnter string `toml:"on_enter"`
	OnLeave string `toml:"on_leave"`
	Delay   int64  `toml:"delay"`
	Size    uint32 `toml:"size"`
	Enabled *bool  `toml:"enabled"`
}

// maxDelayMillis is the largest delay that fits a time.Duration.
const maxDelayMillis = math.MaxInt64 / int64(time.Millisecond)

func (t table) spec() (hotspot.Spec, error) {
	if t.Delay < 0 {
		return hotspot.Spec{}, fmt.Errorf("delay %d is negative", t.Delay)
	}
	delay := time.Duration(math.MaxInt64)
	if t.Delay <= maxDelayMillis {
		delay = time.Duration(t.Delay) * time.Millisecond
	}

	enabled := true
	if t.Enabled != nil {
		enabled = *t.Enabled
	}
	return hotspot.Spec{
		OnEnter: t.OnEnter,
		OnLeave: t.OnLeave,
		Delay:   delay,
		Size:    t.Size,
		Enabled: enabled,
	}, nil
}

// decodeTable decodes one hotspot table and validates it.
func decodeTable(md *toml.MetaData, prim toml.Primitive) (hotspot.Spec, error) {
	var t table
	if err := md.PrimitiveDecode(prim, &t); err != nil {
		return hotspot.Spec{}, err
	}
	return t.spec()
}

// DefaultPath returns <user config dir>/kado.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads and parses the config file at path. A missing file is
// returned as an error satisfying errors.Is(err, os.ErrNotExist).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes a config document.
//
// Top-level tables named after a position are global hotspots and must be
// well-formed. Every other top-level table is a screen whose position
// sub-tables override the global ones; malformed overrides are skipped.
func Parse(data []byte) (*Config, error) {
	var raw map[string]toml.Primitive
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RefreshRate: DefaultRefreshRate,
		global:      make(map[hotspot.Position]hotspot.Spec),
		screens:     make(map[string]map[hotspot.Position]hotspot.Spec),
	}

	// Sorted so Ignored is stable.
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prim := raw[name]
		if name == "refresh_rate" {
			if err := md.PrimitiveDecode(prim, &cfg.RefreshRate); err != nil {
				return nil, fmt.Errorf("refresh_rate: %w", err)
			}
			if cfg.RefreshRate == 0 {
				return nil, errors.New("refresh_rate must be greater than zero")
			}
			continue
		}

		if pos, ok := hotspot.ParsePosition(name); ok {
			spec, err := decodeTable(&md, prim)
			if err != nil {
				return nil, fmt.Errorf("[%s]: %w", name, err)
			}
			cfg.global[pos] = spec
			continue
		}

		cfg.parseScreen(&md, name, prim)
	}
	return cfg, nil
}

func (c *Config) parseScreen(md *toml.MetaData, screen string, prim toml.Primitive) {
	// A scalar decodes into an empty map without error, so check the shape
	// first. MetaData.Type is empty for implicit tables like [eDP-1.top].
	var raw any
	if err := md.PrimitiveDecode(prim, &raw); err != nil {
		c.Ignored = append(c.Ignored, screen)
		return
	}
	if _, ok := raw.(map[string]any); !ok {
		c.Ignored = append(c.Ignored, screen)
		return
	}
	var subs map[string]toml.Primitive
	if err := md.PrimitiveDecode(prim, &subs); err != nil {
		c.Ignored = append(c.Ignored, screen)
		return
	}

	names := make([]string, 0, len(subs))
	for name := range subs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pos, ok := hotspot.ParsePosition(name)
		if !ok {
			continue
		}
		spec, err := decodeTable(md, subs[name])
		if err != nil {
			c.Ignored = append(c.Ignored, screen+"."+name)
			continue
		}
		if c.screens[screen] == nil {
			c.screens[screen] = make(map[hotspot.Position]hotspot.Spec)
		}
		c.screens[screen][pos] = spec
	}
}

// Lookup returns the hotspot for pos on screen: the screen's own entry if it
// has one, otherwise the global entry. The two are never merged.
func (c *Config) Lookup(screen string, pos hotspot.Position) (hotspot.Spec, bool) {
	if spec, ok := c.screens[screen][pos]; ok {
		return spec, true
	}
	spec, ok := c.global[pos]
	return spec, ok
}

// Interval returns the pointer sampling period, 1000/RefreshRate whole
// milliseconds and never less than one.
func (c *Config) Interval() time.Duration {
	rate := c.RefreshRate
	if rate == 0 {
		rate = DefaultRefreshRate
	}
	ms := 1000 / rate
	if ms == 0 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}

// Screens returns the screen names that carry overrides, sorted.
func (c *Config) Screens() []string {
	names := make([]string, 0, len(c.screens))
	for name := range c.screens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
