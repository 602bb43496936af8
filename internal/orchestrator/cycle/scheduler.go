// Package cycle fires periodic notifications subject to suppression and rest hours.
package cycle

import (
	"context"
	"sync"
	"time"

	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/orchestrator/history"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/orchestrator/suppression"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/trace"
)

// Composer builds the message for one notification.
type Composer interface {
	Message(ctx context.Context) string
}

// Notifier delivers a message to the group chat.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Config holds scheduler timing.
type Config struct {
	CycleTime         time.Duration
	RestHours         []int
	TickInterval      time.Duration
	HeartbeatInterval time.Duration
}

// Scheduler owns the cycle and heartbeat timers.
type Scheduler struct {
	cfg       Config
	restHours map[int]bool
	machine   *suppression.Machine
	composer  Composer
	notifier  Notifier
	history   *history.Store
	now       func() time.Time

	mu            sync.Mutex
	lastFire      time.Time
	lastHeartbeat time.Time
}

// New creates a scheduler whose timers start at start.
func New(cfg Config, machine *suppression.Machine, composer Composer, notifier Notifier, events *history.Store, start time.Time) *Scheduler {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	rest := make(map[int]bool, len(cfg.RestHours))
	for _, h := range cfg.RestHours {
		rest[h] = true
	}
	return &Scheduler{
		cfg:           cfg,
		restHours:     rest,
		machine:       machine,
		composer:      composer,
		notifier:      notifier,
		history:       events,
		now:           time.Now,
		lastFire:      start,
		lastHeartbeat: start,
	}
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	trace.Logger(ctx).Info("cycle started", "cycle_time", s.cfg.CycleTime, "rest_hours", s.cfg.RestHours)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx, s.now())
		}
	}
}

// Tick runs one scheduler step at now. It reports the recorded event if the
// cycle was due and allowed to fire.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (history.Event, bool) {
	if s.heartbeatDue(now) {
		trace.Logger(ctx).Info("running", "hour", now.Hour(), "minute", now.Minute())
	}

	s.machine.Rollover(now)

	if !s.fireDue(now) {
		return history.Event{}, false
	}
	return s.fire(ctx, now), true
}

func (s *Scheduler) fire(ctx context.Context, now time.Time) history.Event {
	ctx, span := trace.StartSpan(ctx, "cycle")
	defer span.End()
	log := trace.Logger(ctx)

	hour := now.Hour()
	if s.restHours[hour] {
		span.SetAttr("rest_hour", hour)
		log.Info("rest hour, notification skipped", "hour", hour)
		return s.history.Record(history.KindRestHour, now, "", nil)
	}

	msg := s.composer.Message(ctx)
	span.SetAttr("message", msg)
	if err := s.notifier.Notify(ctx, msg); err != nil {
		span.SetAttr("error", err.Error())
		log.Error("notification failed", "error", err)
		return s.history.Record(history.KindSendFailed, now, msg, err)
	}
	log.Info("notification sent", "message", msg)
	return s.history.Record(history.KindSent, now, msg, nil)
}

func (s *Scheduler) heartbeatDue(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastHeartbeat) < s.cfg.HeartbeatInterval {
		return false
	}
	s.lastHeartbeat = now
	return true
}

// fireDue resets the fire timer when the cycle is due and suppression allows it.
func (s *Scheduler) fireDue(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastFire) < s.cfg.CycleTime || !s.machine.ShouldFire() {
		return false
	}
	s.lastFire = now
	return true
}

// ResetTimer restarts the cycle timer at now.
func (s *Scheduler) ResetTimer(now time.Time) {
	s.mu.Lock()
	s.lastFire = now
	s.mu.Unlock()
}

// SinceReset returns the time elapsed since the last fire or reset.
func (s *Scheduler) SinceReset(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastFire)
}

// CycleTime returns the configured interval.
func (s *Scheduler) CycleTime() time.Duration {
	return s.cfg.CycleTime
}

// IsRestHour reports whether hour is configured as a rest hour.
func (s *Scheduler) IsRestHour(hour int) bool {
	return s.restHours[hour]
}
