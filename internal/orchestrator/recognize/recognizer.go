// Package recognize captures a screen region and reads a single token from it.
package recognize

import (
	"context"
	"image"
	"image/draw"
	"log/slog"
	"time"

	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/orchestrator/region"
	screencap "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/screen"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/trace"
)

// OCRClient interface for text extraction.
type OCRClient interface {
	RecognizeText(ctx context.Context, img image.Image) (string, error)
}

// Snapshotter receives each processed frame in debug mode.
type Snapshotter interface {
	Save(img image.Image)
}

// Recognizer turns a screen region into text. It never fails: every
// capture or OCR problem yields the empty string.
type Recognizer struct {
	capturer screencap.RegionCapturer
	ocr      OCRClient
	timeout  time.Duration
	snapshot Snapshotter
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithTimeout bounds a single OCR call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Recognizer) { r.timeout = d }
}

// WithSnapshotter saves each grayscale frame before OCR.
func WithSnapshotter(s Snapshotter) Option {
	return func(r *Recognizer) { r.snapshot = s }
}

// New creates a recognizer.
func New(capturer screencap.RegionCapturer, ocr OCRClient, opts ...Option) *Recognizer {
	r := &Recognizer{capturer: capturer, ocr: ocr, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recognize captures rect, converts it to grayscale and returns the OCR text.
func (r *Recognizer) Recognize(ctx context.Context, rect region.Rect) (text string) {
	log := trace.Logger(ctx)
	defer func() {
		if p := recover(); p != nil {
			log.Error("recognition panicked", "panic", p)
			text = ""
		}
	}()

	if !rect.Valid() {
		log.Debug("skipping recognition of empty region", "rect", rect)
		return ""
	}

	img, err := r.capturer.CaptureRegion(rect.Image())
	if err != nil {
		log.Warn("capture failed", "error", err)
		return ""
	}

	gray := Grayscale(img)
	if r.snapshot != nil {
		r.snapshot.Save(gray)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text, err = r.ocr.RecognizeText(ctx, gray)
	if err != nil {
		log.Warn("OCR error", "error", err)
		return ""
	}
	log.Debug("recognized", slog.String("text", text))
	return text
}

// Grayscale converts img to 8-bit luminance.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)
	return gray
}
