package recognize

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/corona10/goimagehash"
)

// DiskSnapshotter writes debug frames to a directory as PNG files,
// skipping frames perceptually identical to the last one written.
type DiskSnapshotter struct {
	dir      string
	now      func() time.Time
	mu       sync.Mutex
	lastHash *goimagehash.ImageHash
	written  int
}

// NewDiskSnapshotter creates the directory if needed.
func NewDiskSnapshotter(dir string) (*DiskSnapshotter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &DiskSnapshotter{dir: dir, now: time.Now}, nil
}

// Save implements Snapshotter.
func (s *DiskSnapshotter) Save(img image.Image) {
	if s.isDuplicate(img) {
		return
	}

	name := filepath.Join(s.dir, "frame-"+s.now().Format(SnapshotTimeFormat)+".png")
	f, err := os.Create(name)
	if err != nil {
		slog.Warn("failed to create snapshot", "path", name, "error", err)
		return
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		slog.Warn("failed to encode snapshot", "path", name, "error", err)
		return
	}

	s.mu.Lock()
	s.written++
	s.mu.Unlock()
	slog.Debug("saved snapshot", "path", name)
}

// Written returns the number of frames saved so far.
func (s *DiskSnapshotter) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// isDuplicate computes the pHash and reports whether it is within
// MaxHashDistance of the previously saved frame.
func (s *DiskSnapshotter) isDuplicate(img image.Image) bool {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastHash == nil {
		s.lastHash = hash
		return false
	}

	dist, err := s.lastHash.Distance(hash)
	if err != nil {
		s.lastHash = hash
		return false
	}
	if dist <= MaxHashDistance {
		slog.Debug("skipping snapshot of similar frame", "distance", dist)
		return true
	}

	s.lastHash = hash
	return false
}
