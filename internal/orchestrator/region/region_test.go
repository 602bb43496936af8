package region

import (
	"image"
	"testing"
)

func TestAdjust(t *testing.T) {
	c := NewCalculator(1.5, Insets{})
	got := c.Adjust(Rect{Left: 100, Top: 200, Right: 900, Bottom: 800})
	want := Rect{Left: 162, Top: 355, Right: 1338, Bottom: 1188}

	if got != want {
		t.Errorf("Adjust() = %+v, want %+v", got, want)
	}
}

func TestZeroInsetsReproduceAdjusted(t *testing.T) {
	c := NewCalculator(1.0, Insets{})
	window := Rect{Left: 0, Top: 0, Right: 1024, Bottom: 768}

	if got, want := c.Calculate(window), c.Adjust(window); got != want {
		t.Errorf("Calculate() = %+v, want %+v", got, want)
	}
}

func TestCrop(t *testing.T) {
	c := NewCalculator(1.0, Insets{X1: 0.25, Y1: 0.5, X2: 0.25, Y2: 0.1})
	got := c.Crop(Rect{Left: 0, Top: 0, Right: 400, Bottom: 200})
	want := Rect{Left: 100, Top: 100, Right: 300, Bottom: 180}

	if got != want {
		t.Errorf("Crop() = %+v, want %+v", got, want)
	}
}

func TestInsetsShrinkMonotonically(t *testing.T) {
	window := Rect{Left: 10, Top: 10, Right: 1290, Bottom: 730}
	prevW, prevH := 1e18, 1e18

	for _, f := range []float64{0, 0.05, 0.1, 0.2, 0.3, 0.45} {
		r := NewCalculator(1.0, Insets{X1: f, Y1: f, X2: f, Y2: f}).Calculate(window)
		if r.Width() > prevW || r.Height() > prevH {
			t.Fatalf("inset %.2f grew region: %vx%v after %vx%v", f, r.Width(), r.Height(), prevW, prevH)
		}
		prevW, prevH = r.Width(), r.Height()
	}
}

func TestDegenerateRegionIsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		window Rect
		insets Insets
	}{
		{"tiny window", Rect{Left: 0, Top: 0, Right: 20, Bottom: 60}, Insets{}},
		{"insets overlap", Rect{Left: 0, Top: 0, Right: 800, Bottom: 600}, Insets{X1: 0.6, X2: 0.6}},
		{"empty window", Rect{}, Insets{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := NewCalculator(1.0, tt.insets).Calculate(tt.window); r.Valid() {
				t.Errorf("Calculate() = %+v, want invalid", r)
			}
		})
	}
}

func TestImageRounding(t *testing.T) {
	r := Rect{Left: 10.4, Top: 20.6, Right: 30.5, Bottom: 40.49}
	want := image.Rect(10, 21, 31, 40)

	if got := r.Image(); got != want {
		t.Errorf("Image() = %v, want %v", got, want)
	}
}

func TestFromImage(t *testing.T) {
	r := FromImage(image.Rect(1, 2, 3, 4))
	if r != (Rect{Left: 1, Top: 2, Right: 3, Bottom: 4}) {
		t.Errorf("FromImage() = %+v", r)
	}
}
