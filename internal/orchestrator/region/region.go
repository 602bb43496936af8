// Package region derives the capture rectangle from the foreground window bounds.
package region

import (
	"image"
	"math"
)

// Fixed window-chrome offsets in pixels, applied after scaling.
const (
	DefaultLeftOffset   = 12
	DefaultTopOffset    = 55
	DefaultRightOffset  = 12
	DefaultBottomOffset = 12
)

// Rect is a rectangle in screen pixels. Coordinates stay fractional until capture.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// FromImage converts an integer rectangle.
func FromImage(r image.Rectangle) Rect {
	return Rect{
		Left:   float64(r.Min.X),
		Top:    float64(r.Min.Y),
		Right:  float64(r.Max.X),
		Bottom: float64(r.Max.Y),
	}
}

// Width returns Right - Left.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns Bottom - Top.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Valid reports whether the rectangle has positive area.
func (r Rect) Valid() bool {
	return r.Width() > 0 && r.Height() > 0
}

// Image rounds to an integer rectangle for capture.
func (r Rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Round(r.Left)),
		int(math.Round(r.Top)),
		int(math.Round(r.Right)),
		int(math.Round(r.Bottom)),
	)
}

// Offsets are fixed pixel insets per edge.
type Offsets struct {
	Left, Top, Right, Bottom float64
}

// DefaultOffsets returns the standard window-chrome offsets.
func DefaultOffsets() Offsets {
	return Offsets{
		Left:   DefaultLeftOffset,
		Top:    DefaultTopOffset,
		Right:  DefaultRightOffset,
		Bottom: DefaultBottomOffset,
	}
}

// Insets are fractional insets per edge, relative to the adjusted width/height.
type Insets struct {
	X1, Y1, X2, Y2 float64
}

// Calculator maps a window rectangle to the sampled region.
type Calculator struct {
	Scale   float64
	Offsets Offsets
	Insets  Insets
}

// NewCalculator creates a calculator with the default offsets.
func NewCalculator(scale float64, insets Insets) Calculator {
	return Calculator{Scale: scale, Offsets: DefaultOffsets(), Insets: insets}
}

// Adjust scales the window rectangle and strips the fixed offsets.
func (c Calculator) Adjust(window Rect) Rect {
	return Rect{
		Left:   window.Left*c.Scale + c.Offsets.Left,
		Top:    window.Top*c.Scale + c.Offsets.Top,
		Right:  window.Right*c.Scale - c.Offsets.Right,
		Bottom: window.Bottom*c.Scale - c.Offsets.Bottom,
	}
}

// Crop applies the fractional insets to an adjusted rectangle.
func (c Calculator) Crop(adjusted Rect) Rect {
	w := adjusted.Width()
	h := adjusted.Height()
	return Rect{
		Left:   adjusted.Left + w*c.Insets.X1,
		Top:    adjusted.Top + h*c.Insets.Y1,
		Right:  adjusted.Right - w*c.Insets.X2,
		Bottom: adjusted.Bottom - h*c.Insets.Y2,
	}
}

// Calculate is Crop(Adjust(window)). Degenerate results are returned as-is.
func (c Calculator) Calculate(window Rect) Rect {
	return c.Crop(c.Adjust(window))
}
