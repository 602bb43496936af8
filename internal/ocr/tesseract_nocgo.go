//go:build !cgo

package ocr

import (
	"context"
	"image"

	apperrors "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/errors"
)

// Tesseract is unavailable without cgo; use the cli engine instead.
type Tesseract struct{}

// NewTesseract always fails in builds without cgo.
func NewTesseract(string) (*Tesseract, error) {
	return nil, apperrors.New(apperrors.ConfigInvalid, "ocr engine \"tesseract\" requires a cgo build")
}

// RecognizeText implements Engine.
func (*Tesseract) RecognizeText(context.Context, image.Image) (string, error) {
	return "", apperrors.New(apperrors.Unavailable, "tesseract engine not built")
}
