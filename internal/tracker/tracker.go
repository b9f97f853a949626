// Package tracker turns a stream of per-tick hotspot observations into
// enter and leave actions.
package tracker

import (
	"time"

	"github.com/fakeyudi/kado/internal/hotspot"
)

// State is the phase of the current occupancy.
type State int

const (
	// Idle: the pointer is not in any hotspot.
	Idle State = iota
	// Entered: the pointer is in a hotspot whose dwell delay has not yet passed.
	Entered
	// Fired: the enter action for the current occupancy has been dispatched.
	Fired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Entered:
		return "entered"
	case Fired:
		return "fired"
	}
	return "unknown"
}

// Dispatcher runs an action command without waiting for it.
type Dispatcher interface {
	Invoke(command string)
}

// Tracker is the dwell state machine. It is not safe for concurrent use; the
// poll loop is its only caller.
type Tracker struct {
	dispatch  Dispatcher
	state     State
	current   hotspot.Key
	enteredAt time.Time
}

// New returns an Idle tracker that sends actions to d.
func New(d Dispatcher) *Tracker {
	return &Tracker{dispatch: d}
}

// State returns the current phase.
func (t *Tracker) State() State {
	return t.state
}

// Current returns the occupied hotspot, if any.
func (t *Tracker) Current() (hotspot.Key, bool) {
	return t.current, t.state != Idle
}

// Update feeds one observation taken at now. ok reports whether the pointer
// was in a hotspot, and key names it.
//
// A change of location dispatches the old hotspot's leave action and starts
// a new occupancy; nothing else happens on that tick. While the location is
// unchanged, the enter action is dispatched once the dwell delay has passed.
func (t *Tracker) Update(r hotspot.Resolver, key hotspot.Key, ok bool, now time.Time) {
	if t.changed(key, ok) {
		if t.state != Idle {
			if spec, found := r.Lookup(t.current.Screen, t.current.Position); found && spec.OnLeave != "" {
				t.dispatch.Invoke(spec.OnLeave)
			}
		}
		if ok {
			t.state, t.current, t.enteredAt = Entered, key, now
		} else {
			t.state, t.current, t.enteredAt = Idle, hotspot.Key{}, time.Time{}
		}
		return
	}

	if t.state != Entered {
		return
	}
	spec, found := r.Lookup(t.current.Screen, t.current.Position)
	if !found || now.Sub(t.enteredAt) < spec.Delay {
		return
	}
	if spec.OnEnter != "" {
		t.dispatch.Invoke(spec.OnEnter)
	}
	t.state = Fired
}

func (t *Tracker) changed(key hotspot.Key, ok bool) bool {
	if t.state == Idle {
		return ok
	}
	return !ok || key != t.current
}
