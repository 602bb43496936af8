package cycle

import "time"

// Scheduler defaults
const (
	DefaultTickInterval      = 250 * time.Millisecond
	DefaultHeartbeatInterval = 60 * time.Second
)
