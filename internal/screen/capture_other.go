//go:build !windows && !linux

package screen

import "image"

// displayBackend has no foreground-window API and samples the primary display instead.
type displayBackend struct{}

func (displayBackend) foregroundWindow() (image.Rectangle, error) {
	return primaryDisplay()
}

func newBackend() backend { return displayBackend{} }
