//go:build linux

package screen

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const activeWindowAtom = "_NET_ACTIVE_WINDOW"

// x11Backend asks the window manager for the active window via EWMH.
// Falls back to the primary display when no window manager answers.
type x11Backend struct{}

func (x11Backend) foregroundWindow() (image.Rectangle, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		slog.Debug("x11 unavailable, using primary display", "error", err)
		return primaryDisplay()
	}
	defer conn.Close()

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	atom, err := xproto.InternAtom(conn, true, uint16(len(activeWindowAtom)), activeWindowAtom).Reply()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("intern %s: %w", activeWindowAtom, err)
	}
	if atom.Atom == xproto.AtomNone {
		return primaryDisplay()
	}

	prop, err := xproto.GetProperty(conn, false, root, atom.Atom, xproto.AtomWindow, 0, 1).Reply()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("read %s: %w", activeWindowAtom, err)
	}
	if prop.ValueLen == 0 || len(prop.Value) < 4 {
		return image.Rectangle{}, fmt.Errorf("no active window")
	}
	win := xproto.Window(xgb.Get32(prop.Value))

	geom, err := xproto.GetGeometry(conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("geometry of window %d: %w", win, err)
	}
	// Geometry is relative to the parent; translate the origin to root coordinates.
	pos, err := xproto.TranslateCoordinates(conn, win, root, 0, 0).Reply()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("translate window %d: %w", win, err)
	}

	x, y := int(pos.DstX), int(pos.DstY)
	return image.Rect(x, y, x+int(geom.Width), y+int(geom.Height)), nil
}

func newBackend() backend { return x11Backend{} }
