package recognize

import "time"

// Recognition constants
const (
	// Upper bound on a single OCR call
	DefaultTimeout = 10 * time.Second

	// Hamming distance at or below which two snapshots count as the same frame
	MaxHashDistance = 3

	// Snapshot file name timestamp
	SnapshotTimeFormat = "20060102-150405.000"
)
