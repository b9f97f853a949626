package tracker

import (
	"slices"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/kado/internal/hotspot"
)

// recorder is a Dispatcher that remembers every command in order.
type recorder struct {
	cmds []string
}

func (r *recorder) Invoke(command string) {
	r.cmds = append(r.cmds, command)
}

// catalog is a Resolver with a single global spec per position.
type catalog map[hotspot.Position]hotspot.Spec

func (c catalog) Lookup(_ string, pos hotspot.Position) (hotspot.Spec, bool) {
	s, ok := c[pos]
	return s, ok
}

var (
	t0      = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	topKey  = hotspot.Key{Screen: "eDP-1", Position: hotspot.Top}
	leftKey = hotspot.Key{Screen: "eDP-1", Position: hotspot.Left}
)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func topCatalog(delay time.Duration) catalog {
	return catalog{
		hotspot.Top:  {OnEnter: "A", OnLeave: "B", Delay: delay, Size: 10, Enabled: true},
		hotspot.Left: {OnEnter: "C", OnLeave: "D", Size: 10, Enabled: true},
	}
}

func TestEnterFiresOnceAfterDelay(t *testing.T) {
	rec := &recorder{}
	tr := New(rec)
	c := topCatalog(500 * time.Millisecond)

	for ms := 0; ms <= 1000; ms += 100 {
		tr.Update(c, topKey, true, at(ms))
		switch {
		case ms < 500 && len(rec.cmds) != 0:
			t.Fatalf("t=%dms: dispatched %v before the delay passed", ms, rec.cmds)
		case ms >= 500 && !slices.Equal(rec.cmds, []string{"A"}):
			t.Fatalf("t=%dms: dispatched %v, want [A]", ms, rec.cmds)
		}
	}
	if tr.State() != Fired {
		t.Errorf("state = %s, want fired", tr.State())
	}

	tr.Update(c, hotspot.Key{}, false, at(1100))
	if !slices.Equal(rec.cmds, []string{"A", "B"}) {
		t.Errorf("after leaving: dispatched %v, want [A B]", rec.cmds)
	}
	if tr.State() != Idle {
		t.Errorf("state = %s, want idle", tr.State())
	}
	if _, ok := tr.Current(); ok {
		t.Error("Current() reports a hotspot after leaving")
	}
}

func TestLeaveBeforeDelayFiresOnlyLeave(t *testing.T) {
	rec := &recorder{}
	tr := New(rec)
	c := topCatalog(500 * time.Millisecond)

	tr.Update(c, topKey, true, at(0))
	tr.Update(c, topKey, true, at(200))
	tr.Update(c, topKey, true, at(499))
	tr.Update(c, hotspot.Key{}, false, at(600))

	if !slices.Equal(rec.cmds, []string{"B"}) {
		t.Errorf("dispatched %v, want [B]", rec.cmds)
	}
}

func TestEnterNeedsASecondTick(t *testing.T) {
	rec := &recorder{}
	tr := New(rec)
	c := topCatalog(0)

	tr.Update(c, topKey, true, at(0))
	if len(rec.cmds) != 0 {
		t.Fatalf("dispatched %v on the entering tick", rec.cmds)
	}
	if tr.State() != Entered {
		t.Fatalf("state = %s, want entered", tr.State())
	}
	tr.Update(c, topKey, true, at(16))
	if !slices.Equal(rec.cmds, []string{"A"}) {
		t.Errorf("dispatched %v, want [A]", rec.cmds)
	}
}

func TestSwitchingHotspotsFiresOnlyLeaveThatTick(t *testing.T) {
	rec := &recorder{}
	tr := New(rec)
	c := topCatalog(0)

	tr.Update(c, topKey, true, at(0))
	tr.Update(c, topKey, true, at(10))
	tr.Update(c, leftKey, true, at(20))
	if !slices.Equal(rec.cmds, []string{"A", "B"}) {
		t.Fatalf("dispatched %v, want [A B]", rec.cmds)
	}
	tr.Update(c, leftKey, true, at(30))
	if !slices.Equal(rec.cmds, []string{"A", "B", "C"}) {
		t.Errorf("dispatched %v, want [A B C]", rec.cmds)
	}
}

func TestReentryRestartsDwell(t *testing.T) {
	rec := &recorder{}
	tr := New(rec)
	c := topCatalog(300 * time.Millisecond)

	tr.Update(c, topKey, true, at(0))
	tr.Update(c, topKey, true, at(300))
	tr.Update(c, hotspot.Key{}, false, at(400))
	tr.Update(c, topKey, true, at(500))
	tr.Update(c, topKey, true, at(700))
	if !slices.Equal(rec.cmds, []string{"A", "B"}) {
		t.Fatalf("dispatched %v, want [A B] before the second dwell completes", rec.cmds)
	}
	tr.Update(c, topKey, true, at(800))
	if !slices.Equal(rec.cmds, []string{"A", "B", "A"}) {
		t.Errorf("dispatched %v, want [A B A]", rec.cmds)
	}
}

func TestMissingCommandsStillAdvance(t *testing.T) {
	rec := &recorder{}
	tr := New(rec)
	c := catalog{hotspot.Top: {Size: 10, Enabled: true}}

	tr.Update(c, topKey, true, at(0))
	tr.Update(c, topKey, true, at(10))
	if tr.State() != Fired {
		t.Errorf("state = %s, want fired without an enter command", tr.State())
	}
	tr.Update(c, hotspot.Key{}, false, at(20))
	if len(rec.cmds) != 0 {
		t.Errorf("dispatched %v, want nothing", rec.cmds)
	}
}

func TestUnresolvableHotspotStaysEntered(t *testing.T) {
	rec := &recorder{}
	tr := New(rec)

	// The key was detected under one config, then the config lost it.
	tr.Update(topCatalog(0), topKey, true, at(0))
	tr.Update(catalog{}, topKey, true, at(10))
	if tr.State() != Entered {
		t.Errorf("state = %s, want entered", tr.State())
	}
	tr.Update(catalog{}, hotspot.Key{}, false, at(20))
	if len(rec.cmds) != 0 {
		t.Errorf("dispatched %v, want nothing", rec.cmds)
	}
}

// Over any observation sequence, each occupancy dispatches at most one enter
// and exactly one leave, and the enter only after the dwell delay.
func TestOccupancyInvariants(t *testing.T) {
	keys := []hotspot.Key{topKey, leftKey}
	rapid.Check(t, func(t *rapid.T) {
		delay := time.Duration(rapid.IntRange(0, 500).Draw(t, "delay_ms")) * time.Millisecond
		c := catalog{
			hotspot.Top:  {OnEnter: "enter", OnLeave: "leave", Delay: delay, Size: 1, Enabled: true},
			hotspot.Left: {OnEnter: "enter", OnLeave: "leave", Delay: delay, Size: 1, Enabled: true},
		}
		rec := &recorder{}
		tr := New(rec)

		now := t0
		var (
			cur       hotspot.Key
			inside    bool
			enteredAt time.Time
			enters    int
		)
		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			now = now.Add(time.Duration(rapid.IntRange(1, 200).Draw(t, "gap_ms")) * time.Millisecond)
			idx := rapid.IntRange(-1, len(keys)-1).Draw(t, "key")
			ok := idx >= 0
			var key hotspot.Key
			if ok {
				key = keys[idx]
			}

			before := len(rec.cmds)
			tr.Update(c, key, ok, now)
			got := rec.cmds[before:]

			changed := ok != inside || (ok && key != cur)
			switch {
			case changed && inside:
				if !slices.Equal(got, []string{"leave"}) {
					t.Fatalf("step %d: leaving dispatched %v, want [leave]", i, got)
				}
			case changed:
				if len(got) != 0 {
					t.Fatalf("step %d: entering dispatched %v, want nothing", i, got)
				}
			case inside && enters == 0 && now.Sub(enteredAt) >= delay:
				if !slices.Equal(got, []string{"enter"}) {
					t.Fatalf("step %d: dwell passed, dispatched %v, want [enter]", i, got)
				}
			default:
				if len(got) != 0 {
					t.Fatalf("step %d: dispatched %v, want nothing", i, got)
				}
			}

			if changed {
				cur, inside, enteredAt, enters = key, ok, now, 0
			} else if len(got) == 1 {
				enters++
			}

			if tr.State() == Idle && inside {
				t.Fatalf("step %d: tracker idle while inside %v", i, cur)
			}
			if k, ok := tr.Current(); ok != inside || (ok && k != cur) {
				t.Fatalf("step %d: Current() = %v, %v; want %v, %v", i, k, ok, cur, inside)
			}
		}
	})
}
