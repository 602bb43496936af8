package history

// Store defaults
const (
	DefaultMaxEntries  = 50
	DefaultEventBuffer = 32
)
