// Package suppression tracks mute state for cycle notifications
package suppression

import (
	"log/slog"
	"sync"
	"time"
)

// State is the behavioral state derived from the flag pair.
type State int

const (
	Normal     State = iota // notifications fire
	QuietToday              // muted until the calendar day changes
	Muted                   // muted until an explicit unmute
)

func (s State) String() string {
	return [...]string{"normal", "quiet-today", "muted"}[s]
}

// Flags is a consistent snapshot of both flags.
type Flags struct {
	MutedIndefinitely bool
	MutedUntilNextDay bool
}

// State collapses the flags; an indefinite mute dominates.
func (f Flags) State() State {
	switch {
	case f.MutedIndefinitely:
		return Muted
	case f.MutedUntilNextDay:
		return QuietToday
	default:
		return Normal
	}
}

// Machine guards the suppression flags. Safe for concurrent use.
type Machine struct {
	mu      sync.Mutex
	flags   Flags
	checked time.Time // last day the quiet flag was evaluated against
}

// New returns a machine in the Normal state.
func New() *Machine {
	return &Machine{}
}

// Mute sets the indefinite flag. Returns false if it was already set.
func (m *Machine) Mute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flags.MutedIndefinitely {
		return false
	}
	m.flags.MutedIndefinitely = true
	slog.Info("notifications muted")
	return true
}

// Unmute clears both flags if the indefinite flag is set. Returns false otherwise.
func (m *Machine) Unmute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.flags.MutedIndefinitely {
		return false
	}
	m.flags = Flags{}
	slog.Info("notifications unmuted")
	return true
}

// QuietToday sets the until-next-day flag. Returns false if it was already set.
// The indefinite flag is left untouched.
func (m *Machine) QuietToday(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.flags.MutedUntilNextDay {
		return false
	}
	m.flags.MutedUntilNextDay = true
	m.checked = now
	slog.Info("notifications quiet for today", "date", now.Format(time.DateOnly))
	return true
}

// Unquiet clears both flags if the until-next-day flag is set. Returns false otherwise.
func (m *Machine) Unquiet() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.flags.MutedUntilNextDay {
		return false
	}
	m.flags = Flags{}
	slog.Info("notifications no longer quiet")
	return true
}

// Rollover clears the until-next-day flag once now falls on a different
// calendar day than the last evaluation. Returns true if it cleared the flag.
func (m *Machine) Rollover(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.flags.MutedUntilNextDay {
		return false
	}
	if sameDay(m.checked, now) {
		return false
	}
	m.checked = now
	m.flags.MutedUntilNextDay = false
	slog.Info("day rolled over, quiet flag cleared", "date", now.Format(time.DateOnly))
	return true
}

// ShouldFire reports whether neither flag is set.
func (m *Machine) ShouldFire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags == Flags{}
}

// Flags returns a snapshot of both flags.
func (m *Machine) Flags() Flags {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
