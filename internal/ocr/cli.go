package ocr

import (
	"bytes"
	"context"
	"image"
	"os/exec"

	apperrors "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/errors"
)

// DefaultTesseractPath is used when no binary is configured.
const DefaultTesseractPath = "tesseract"

// CLI runs the tesseract binary, streaming the image over stdin.
type CLI struct {
	path string
}

// NewCLI creates an engine for the binary at path.
func NewCLI(path string) *CLI {
	if path == "" {
		path = DefaultTesseractPath
	}
	return &CLI{path: path}
}

// Args returns the tesseract argument list.
func (c *CLI) Args() []string {
	return []string{"stdin", "stdout", "-l", Language, "--psm", PageSegModeChar}
}

// RecognizeText implements Engine.
func (c *CLI) RecognizeText(ctx context.Context, img image.Image) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, c.path, c.Args()...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", apperrors.Wrap(ctx.Err(), apperrors.Timeout, "tesseract timed out")
		}
		return "", apperrors.Wrap(err, apperrors.OCRFailed, "tesseract failed").
			WithMetadata("stderr", stderr.String())
	}
	return normalize(stdout.String()), nil
}
