// Package ocr provides single-token text recognition engines.
//
// Every engine is configured for English and single-character page
// segmentation (tesseract --psm 10), and trims surrounding whitespace from its
// output the way tesseract's own wrappers do. Engines return errors; callers in
// the recognition pipeline turn them into empty results.
package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"

	apperrors "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/errors"
)

// Engine names accepted by New.
const (
	EngineCLI       = "cli"
	EngineTesseract = "tesseract"
	EngineGRPC      = "grpc"
)

// Tesseract settings shared by the local engines.
const (
	Language        = "eng"
	PageSegModeChar = "10"
)

// Engine recognizes text in an image.
type Engine interface {
	RecognizeText(ctx context.Context, img image.Image) (string, error)
}

// Options selects and configures an engine.
type Options struct {
	Engine         string
	TesseractPath  string // binary for the cli engine
	TessdataPrefix string // tessdata directory for the in-process engine
	Addr           string // remote OCR service for the grpc engine
}

// New builds the engine named by opts.Engine.
func New(opts Options) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Engine)) {
	case "", EngineCLI:
		return NewCLI(opts.TesseractPath), nil
	case EngineTesseract:
		t, err := NewTesseract(opts.TessdataPrefix)
		if err != nil {
			return nil, err
		}
		return t, nil
	case EngineGRPC:
		g, err := NewGRPC(opts.Addr)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, apperrors.Newf(apperrors.ConfigInvalid, "unknown ocr engine %q", opts.Engine)
	}
}

// encodePNG serializes img for engines that take encoded bytes.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperrors.Wrap(err, apperrors.OCRFailed, "encode png")
	}
	return buf.Bytes(), nil
}

func normalize(text string) string {
	return strings.TrimSpace(text)
}
