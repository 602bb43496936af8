// Package orchestrator wires screen recognition, suppression and the cycle scheduler
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/config"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/orchestrator/cycle"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/orchestrator/dialog"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/orchestrator/history"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/orchestrator/recognize"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/orchestrator/region"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/orchestrator/suppression"
	screencap "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/screen"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/trace"
)

// Deps are the external collaborators of a Manager.
type Deps struct {
	Window   screencap.WindowSource
	Capturer screencap.RegionCapturer
	OCR      recognize.OCRClient
	Notifier cycle.Notifier

	// Optional
	Picker dialog.Picker
	Now    func() time.Time
}

// Status is a point-in-time view of suppression and timer state.
type Status struct {
	State             string  `json:"state"`
	MutedIndefinitely bool    `json:"muted_indefinitely"`
	MutedUntilNextDay bool    `json:"muted_until_next_day"`
	SecondsSinceReset int64   `json:"seconds_since_reset"`
	CycleTimeSeconds  float64 `json:"cycle_time_seconds"`
	RestHours         []int   `json:"rest_hours"`
	RestHourNow       bool    `json:"rest_hour_now"`
}

// Manager coordinates all services
type Manager struct {
	cfg *config.Config
	now func() time.Time

	window     screencap.WindowSource
	region     region.Calculator
	recognizer *recognize.Recognizer
	mapping    dialog.Mapping
	composer   *dialog.Composer

	machine   *suppression.Machine
	scheduler *cycle.Scheduler
	history   *history.Store
}

// New creates a new manager
func New(cfg *config.Config, deps Deps) (*Manager, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	recOpts := []recognize.Option{recognize.WithTimeout(cfg.General.OCRTimeout)}
	if cfg.General.DebugMode {
		snap, err := recognize.NewDiskSnapshotter(cfg.General.DebugDir)
		if err != nil {
			return nil, err
		}
		recOpts = append(recOpts, recognize.WithSnapshotter(snap))
	}

	var composerOpts []dialog.Option
	if deps.Picker != nil {
		composerOpts = append(composerOpts, dialog.WithPicker(deps.Picker))
	}

	bb := cfg.BoundingBox
	m := &Manager{
		cfg:        cfg,
		now:        now,
		window:     deps.Window,
		region:     region.NewCalculator(bb.ScaleFactor, region.Insets{X1: bb.X1, Y1: bb.Y1, X2: bb.X2, Y2: bb.Y2}),
		recognizer: recognize.New(deps.Capturer, deps.OCR, recOpts...),
		mapping:    dialog.NewMapping(cfg.Dialog.Mapping),
		composer:   dialog.NewComposer(cfg.Dialog.Notif, cfg.Dialog.Fail, composerOpts...),
		machine:    suppression.New(),
		history:    history.NewStore(cfg.General.HistorySize, history.DefaultEventBuffer),
	}
	m.scheduler = cycle.New(cycle.Config{
		CycleTime:    cfg.General.CycleTime,
		RestHours:    cfg.General.RestHours,
		TickInterval: cfg.General.TickInterval,
	}, m.machine, m, deps.Notifier, m.history, now())
	return m, nil
}

// Run drives the cycle scheduler until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	m.scheduler.Run(ctx)
}

// Tick runs one scheduler step at now.
func (m *Manager) Tick(ctx context.Context, now time.Time) (history.Event, bool) {
	return m.scheduler.Tick(ctx, now)
}

// Message runs window lookup, region, recognition, label lookup and composition.
func (m *Manager) Message(ctx context.Context) string {
	ctx, span := trace.StartSpan(ctx, "compose_message")
	defer span.End()
	log := trace.Logger(ctx)

	name, ok := m.identify(ctx)
	span.SetAttr("resolved", ok)
	if ok {
		log.Info("label resolved", "name", name)
	}
	return m.composer.Compose(name, ok)
}

func (m *Manager) identify(ctx context.Context) (string, bool) {
	win, err := m.window.ForegroundWindow()
	if err != nil {
		trace.Logger(ctx).Warn("foreground window unavailable", "error", err)
		return "", false
	}
	rect := m.region.Calculate(region.FromImage(win))
	text := m.recognizer.Recognize(ctx, rect)
	return m.mapping.Resolve(text)
}

// Notify composes a message on demand and returns it as the reply.
func (m *Manager) Notify(ctx context.Context) string {
	msg := m.Message(ctx)
	m.history.Record(history.KindOnDemand, m.now(), msg, nil)
	return msg
}

// Mute suppresses notifications until Unmute.
func (m *Manager) Mute() string {
	if m.machine.Mute() {
		return m.cfg.Dialog.Shutup
	}
	return m.cfg.Dialog.AlreadyMuted
}

// Unmute lifts an indefinite mute, along with any quiet-today.
func (m *Manager) Unmute() string {
	if m.machine.Unmute() {
		return m.cfg.Dialog.Unshutup
	}
	return m.cfg.Dialog.AlreadyUnmuted
}

// QuietToday suppresses notifications until the calendar day changes.
func (m *Manager) QuietToday() string {
	if m.machine.QuietToday(m.now()) {
		return m.cfg.Dialog.Shh
	}
	return m.cfg.Dialog.AlreadyQuiet
}

// Unquiet lifts quiet-today, along with any indefinite mute.
func (m *Manager) Unquiet() string {
	if m.machine.Unquiet() {
		return m.cfg.Dialog.Unshh
	}
	return m.cfg.Dialog.NotQuiet
}

// ResetTimer restarts the cycle timer.
func (m *Manager) ResetTimer() string {
	m.scheduler.ResetTimer(m.now())
	return m.cfg.Dialog.TimerReset
}

// Status returns the current suppression and timer state.
func (m *Manager) Status() Status {
	now := m.now()
	f := m.machine.Flags()
	return Status{
		State:             f.State().String(),
		MutedIndefinitely: f.MutedIndefinitely,
		MutedUntilNextDay: f.MutedUntilNextDay,
		SecondsSinceReset: int64(m.scheduler.SinceReset(now) / time.Second),
		CycleTimeSeconds:  m.scheduler.CycleTime().Seconds(),
		RestHours:         append([]int{}, m.cfg.General.RestHours...),
		RestHourNow:       m.scheduler.IsRestHour(now.Hour()),
	}
}

// StatusText renders the non-secret configuration followed by runtime variables.
func (m *Manager) StatusText() string {
	var b strings.Builder
	for _, s := range m.cfg.PublicSections() {
		fmt.Fprintf(&b, "[%s] \n", s.Name)
		for _, e := range s.Entries {
			fmt.Fprintf(&b, "%s = %s\n", e.Key, e.Value)
		}
		b.WriteString("\n")
	}

	st := m.Status()
	b.WriteString("[Vars]\n")
	fmt.Fprintf(&b, "shut_up = %s\n", titleBool(st.MutedIndefinitely))
	fmt.Fprintf(&b, "shh = %s\n", titleBool(st.MutedUntilNextDay))
	fmt.Fprintf(&b, "Time Since Start %d Second(s)\n", st.SecondsSinceReset)
	return b.String()
}

// History returns up to n recent cycle events.
func (m *Manager) History(n int) []history.Event {
	return m.history.Recent(n)
}

// Events returns the cycle event stream.
func (m *Manager) Events() <-chan history.Event {
	return m.history.Events()
}

// titleBool matches the True/False spelling used in the config file.
func titleBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
