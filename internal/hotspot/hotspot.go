// Package hotspot resolves a pointer coordinate to the edge or corner zone
// of the monitor it lies on.
package hotspot

import "time"

// Position names one of the eight edge and corner zones of a screen.
type Position int

const (
	Top Position = iota
	Bottom
	Left
	Right
	TopLeft
	TopRight
	BottomLeft
	BottomRight
)

// Positions lists every Position in scan order. Detect checks them in this
// order, so an edge wins over an overlapping corner.
var Positions = [...]Position{Top, Bottom, Left, Right, TopLeft, TopRight, BottomLeft, BottomRight}

var positionNames = [...]string{
	Top:         "top",
	Bottom:      "bottom",
	Left:        "left",
	Right:       "right",
	TopLeft:     "top_left",
	TopRight:    "top_right",
	BottomLeft:  "bottom_left",
	BottomRight: "bottom_right",
}

// String returns the name used for the position in config files.
func (p Position) String() string {
	if p < 0 || int(p) >= len(positionNames) {
		return "unknown"
	}
	return positionNames[p]
}

// ParsePosition maps a config table name to its Position.
func ParsePosition(s string) (Position, bool) {
	for i, name := range positionNames {
		if name == s {
			return Position(i), true
		}
	}
	return 0, false
}

// Spec is the resolved definition of a single hotspot.
type Spec struct {
	OnEnter string        // shell command run once the dwell delay has passed; "" = none
	OnLeave string        // shell command run when the pointer leaves; "" = none
	Delay   time.Duration // dwell time before OnEnter fires
	Size    uint32        // thickness of the zone in pixels
	Enabled bool
}

// Key identifies a hotspot on a particular screen. Only the key, never the
// Spec contents, decides whether the pointer changed location.
type Key struct {
	Screen   string
	Position Position
}

func (k Key) String() string {
	return k.Screen + "/" + k.Position.String()
}

// Resolver returns the effective Spec for a position on a screen.
type Resolver interface {
	Lookup(screen string, pos Position) (Spec, bool)
}

// Region is the geometry of one monitor in root window coordinates.
type Region struct {
	Name   string
	X, Y   int16
	Width  uint16
	Height uint16
}

// Contains reports whether (x, y) lies in [X, X+Width) × [Y, Y+Height).
func (r Region) Contains(x, y int16) bool {
	px, py := int(x), int(y)
	rx, ry := int(r.X), int(r.Y)
	return px >= rx && px < rx+int(r.Width) && py >= ry && py < ry+int(r.Height)
}
