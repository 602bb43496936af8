//go:build windows

package screen

import (
	"fmt"
	"image"

	"github.com/lxn/win"
)

type windowsBackend struct{}

func (windowsBackend) foregroundWindow() (image.Rectangle, error) {
	hwnd := win.GetForegroundWindow()
	if hwnd == 0 {
		return image.Rectangle{}, fmt.Errorf("no foreground window")
	}
	var rc win.RECT
	if !win.GetWindowRect(hwnd, &rc) {
		return image.Rectangle{}, fmt.Errorf("GetWindowRect failed for hwnd %v", hwnd)
	}
	return image.Rect(int(rc.Left), int(rc.Top), int(rc.Right), int(rc.Bottom)), nil
}

func newBackend() backend { return windowsBackend{} }
