// Package screen locates the foreground window and captures screen regions
package screen

import (
	"image"

	"github.com/kbinani/screenshot"

	apperrors "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/errors"
)

// WindowSource reports the bounds of the current foreground window.
type WindowSource interface {
	ForegroundWindow() (image.Rectangle, error)
}

// RegionCapturer grabs pixels from a screen rectangle.
type RegionCapturer interface {
	CaptureRegion(r image.Rectangle) (image.Image, error)
}

// backend implements the platform-specific window lookup
type backend interface {
	foregroundWindow() (image.Rectangle, error)
}

// Capturer implements WindowSource and RegionCapturer for the local display.
type Capturer struct {
	backend
}

// New creates a capturer for the current platform.
func New() *Capturer {
	return &Capturer{backend: newBackend()}
}

// ForegroundWindow returns the foreground window bounds in screen pixels.
func (c *Capturer) ForegroundWindow() (image.Rectangle, error) {
	r, err := c.foregroundWindow()
	if err != nil {
		return image.Rectangle{}, apperrors.Wrap(err, apperrors.CaptureFailed, "foreground window lookup failed")
	}
	if r.Empty() {
		return image.Rectangle{}, apperrors.Newf(apperrors.CaptureFailed, "foreground window has no area: %v", r)
	}
	return r, nil
}

// CaptureRegion captures r from the virtual screen.
func (c *Capturer) CaptureRegion(r image.Rectangle) (image.Image, error) {
	if r.Empty() {
		return nil, apperrors.Newf(apperrors.InvalidArgument, "invalid region dimensions: %v", r)
	}
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CaptureFailed, "capture %v", r)
	}
	return img, nil
}

// primaryDisplay returns the bounds of display 0.
func primaryDisplay() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}, apperrors.New(apperrors.Unavailable, "no active displays found")
	}
	return screenshot.GetDisplayBounds(0), nil
}
