//go:build cgo

package ocr

import (
	"context"
	"image"

	"github.com/otiai10/gosseract/v2"

	apperrors "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/errors"
)

// Tesseract runs libtesseract in-process.
type Tesseract struct {
	tessdataPrefix string
}

// NewTesseract creates an in-process engine. An empty prefix uses libtesseract's default.
func NewTesseract(tessdataPrefix string) (*Tesseract, error) {
	return &Tesseract{tessdataPrefix: tessdataPrefix}, nil
}

// RecognizeText implements Engine. A client per call keeps the engine safe for concurrent use.
func (t *Tesseract) RecognizeText(ctx context.Context, img image.Image) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataPrefix != "" {
		client.SetTessdataPrefix(t.tessdataPrefix)
	}
	if err := client.SetLanguage(Language); err != nil {
		return "", apperrors.Wrap(err, apperrors.OCRFailed, "set language")
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR); err != nil {
		return "", apperrors.Wrap(err, apperrors.OCRFailed, "set page segmentation mode")
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", apperrors.Wrap(err, apperrors.OCRFailed, "set image")
	}
	if err := ctx.Err(); err != nil {
		return "", apperrors.Wrap(err, apperrors.Timeout, "recognition cancelled")
	}

	text, err := client.Text()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.OCRFailed, "tesseract OCR failed")
	}
	return normalize(text), nil
}
