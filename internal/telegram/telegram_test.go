package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/errors"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/resilience"
)

type mockAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
	failures []error // returned by Send in order before succeeding
	updates  chan tgbotapi.Update
	stopped  bool
}

func newMockAPI() *mockAPI {
	return &mockAPI{updates: make(chan tgbotapi.Update, 10)}
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return tgbotapi.Message{}, err
	}
	m.sent = append(m.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (m *mockAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *mockAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updates
}

func (m *mockAPI) StopReceivingUpdates() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *mockAPI) messages() []tgbotapi.MessageConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), m.sent...)
}

type mockController struct {
	mu    sync.Mutex
	calls []string
}

func (m *mockController) record(name string) string {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
	return name + " reply"
}

func (m *mockController) Notify(context.Context) string { return m.record("notify") }
func (m *mockController) Mute() string                  { return m.record("mute") }
func (m *mockController) Unmute() string                { return m.record("unmute") }
func (m *mockController) QuietToday() string            { return m.record("quiet") }
func (m *mockController) Unquiet() string               { return m.record("unquiet") }
func (m *mockController) ResetTimer() string            { return m.record("reset") }
func (m *mockController) StatusText() string            { return m.record("status") }

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond,
		IsRetryable: resilience.IsRetryableTelegram}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"-1001234567890", Target{ChatID: -1001234567890}, false},
		{" 42 ", Target{ChatID: 42}, false},
		{"@mychannel", Target{Username: "@mychannel"}, false},
		{"@", Target{}, true},
		{"my group", Target{}, true},
	}
	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTarget(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestNotifierSendsToGroup(t *testing.T) {
	api := newMockAPI()
	n := NewNotifier(api, Target{ChatID: -100})

	if err := n.Notify(context.Background(), "It's Dragon Quest!"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	sent := api.messages()
	if len(sent) != 1 || sent[0].ChatID != -100 || sent[0].Text != "It's Dragon Quest!" {
		t.Errorf("sent = %+v", sent)
	}
}

func TestNotifierChannelTarget(t *testing.T) {
	api := newMockAPI()
	n := NewNotifier(api, Target{Username: "@games"})

	if err := n.Notify(context.Background(), "hi"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if sent := api.messages(); len(sent) != 1 || sent[0].ChannelUsername != "@games" {
		t.Errorf("sent = %+v, want channel @games", sent)
	}
}

func TestNotifierRetriesTransientErrors(t *testing.T) {
	api := newMockAPI()
	api.failures = []error{&tgbotapi.Error{Code: 502, Message: "Bad Gateway"}}
	n := NewNotifier(api, Target{ChatID: 1})
	n.retry = fastRetry()

	if err := n.Notify(context.Background(), "hi"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(api.messages()) != 1 {
		t.Error("message should be delivered after a retry")
	}
}

func TestNotifierPermanentError(t *testing.T) {
	api := newMockAPI()
	api.failures = []error{&tgbotapi.Error{Code: 400, Message: "chat not found"}}
	n := NewNotifier(api, Target{ChatID: 1})
	n.retry = fastRetry()

	err := n.Notify(context.Background(), "hi")
	if !apperrors.IsCode(err, apperrors.SendFailed) {
		t.Errorf("Notify() error = %v, want SEND_FAILED", err)
	}
}

func TestCommandName(t *testing.T) {
	tests := map[string]string{
		"/mute":               "mute",
		"/Mute@ScreenBot":     "mute",
		"/quiet-today please": "quiet-today",
		"  /notify":           "notify",
		"hello":               "",
		"":                    "",
		"/":                   "",
	}
	for in, want := range tests {
		if got := commandName(in); got != want {
			t.Errorf("commandName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReplyDispatch(t *testing.T) {
	ctrl := &mockController{}
	h := NewHandler(newMockAPI(), ctrl)

	tests := map[string]string{
		"notify":      "notify",
		"shutup":      "mute",
		"mute":        "mute",
		"unshutup":    "unmute",
		"unmute":      "unmute",
		"shh":         "quiet",
		"quiet_today": "quiet",
		"quiet-today": "quiet",
		"unshh":       "unquiet",
		"unquiet":     "unquiet",
		"config":      "status",
		"status":      "status",
		"resettimer":  "reset",
	}
	for cmd, want := range tests {
		got, ok := h.Reply(context.Background(), cmd)
		if !ok || got != want+" reply" {
			t.Errorf("Reply(%q) = %q, %v; want %q", cmd, got, ok, want+" reply")
		}
	}

	if _, ok := h.Reply(context.Background(), "start"); ok {
		t.Error("unknown commands should be ignored")
	}
	help, ok := h.Reply(context.Background(), "help")
	if !ok || !strings.Contains(help, "/resettimer") || !strings.Contains(help, "/shh, /quiet_today") {
		t.Errorf("help = %q", help)
	}
}

func TestBotCommands(t *testing.T) {
	cmds := BotCommands()
	seen := map[string]bool{}
	for _, c := range cmds {
		if strings.Contains(c.Command, "-") {
			t.Errorf("command %q is not a valid Telegram command", c.Command)
		}
		seen[c.Command] = true
	}
	for _, want := range []string{"notify", "shutup", "unshutup", "shh", "unshh", "config", "resettimer", "help"} {
		if !seen[want] {
			t.Errorf("command %q not registered", want)
		}
	}
}

func TestRegisterCommands(t *testing.T) {
	api := newMockAPI()
	NewHandler(api, &mockController{}).RegisterCommands(context.Background())

	if len(api.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(api.requests))
	}
	if _, ok := api.requests[0].(tgbotapi.SetMyCommandsConfig); !ok {
		t.Errorf("request = %T, want SetMyCommandsConfig", api.requests[0])
	}
}

func TestListenRepliesInChat(t *testing.T) {
	api := newMockAPI()
	ctrl := &mockController{}
	h := NewHandler(api, ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Listen(ctx)
		close(done)
	}()

	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{Text: "just chatting", Chat: &tgbotapi.Chat{ID: 7}}}
	api.updates <- tgbotapi.Update{}
	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{Text: "/shutup", Chat: &tgbotapi.Chat{ID: 7}}}

	deadline := time.After(2 * time.Second)
	for len(api.messages()) == 0 {
		select {
		case <-deadline:
			t.Fatal("no reply sent")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	sent := api.messages()
	if len(sent) != 1 || sent[0].ChatID != 7 || sent[0].Text != "mute reply" {
		t.Errorf("sent = %+v, want one mute reply to chat 7", sent)
	}
	if !api.stopped {
		t.Error("Listen() should stop polling on cancel")
	}
}
