// Package display talks to the X server: it lists monitor geometry through
// RandR and samples the pointer position.
package display

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/fakeyudi/kado/internal/hotspot"
)

// X is a connection to an X server and its default root window.
type X struct {
	conn *xgb.Conn
	root xproto.Window
}

// Connect opens the display named by name, or $DISPLAY when name is empty,
// and enables the RandR extension.
func Connect(name string) (*X, error) {
	conn, err := xgb.NewConnDisplay(name)
	if err != nil {
		return nil, fmt.Errorf("connecting to X server: %w", err)
	}
	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialising RandR: %w", err)
	}
	root := xproto.Setup(conn).DefaultScreen(conn).Root
	return &X{conn: conn, root: root}, nil
}

// Close releases the connection.
func (x *X) Close() {
	x.conn.Close()
}

// Screens returns the geometry of every output that has a CRTC and a
// non-empty mode, in the order RandR reports them. The list may be empty.
func (x *X) Screens() ([]hotspot.Region, error) {
	res, err := randr.GetScreenResources(x.conn, x.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("querying screen resources: %w", err)
	}

	var regions []hotspot.Region
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(x.conn, output, 0).Reply()
		if err != nil {
			return nil, fmt.Errorf("querying output %d: %w", output, err)
		}
		if info.Crtc == 0 {
			continue
		}

		crtc, err := randr.GetCrtcInfo(x.conn, info.Crtc, 0).Reply()
		if err != nil {
			return nil, fmt.Errorf("querying crtc %d: %w", info.Crtc, err)
		}
		if crtc.Width == 0 || crtc.Height == 0 {
			continue
		}

		regions = append(regions, hotspot.Region{
			Name:   string(info.Name),
			X:      crtc.X,
			Y:      crtc.Y,
			Width:  crtc.Width,
			Height: crtc.Height,
		})
	}
	return regions, nil
}

// Pointer returns the pointer position relative to the root window.
func (x *X) Pointer() (int16, int16, error) {
	reply, err := xproto.QueryPointer(x.conn, x.root).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("querying pointer: %w", err)
	}
	return reply.RootX, reply.RootY, nil
}
