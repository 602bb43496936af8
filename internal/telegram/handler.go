package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/resilience"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/trace"
)

// Controller is the command surface of the orchestrator.
type Controller interface {
	Notify(ctx context.Context) string
	Mute() string
	Unmute() string
	QuietToday() string
	Unquiet() string
	ResetTimer() string
	StatusText() string
}

type command struct {
	names       []string // first name is registered with Telegram
	description string
	run         func(ctx context.Context, c Controller) string
}

var commands = []command{
	{[]string{"notify"}, "Read the screen and reply now", func(ctx context.Context, c Controller) string { return c.Notify(ctx) }},
	{[]string{"shutup", "mute"}, "Stop notifications until unmuted", func(_ context.Context, c Controller) string { return c.Mute() }},
	{[]string{"unshutup", "unmute"}, "Resume notifications", func(_ context.Context, c Controller) string { return c.Unmute() }},
	{[]string{"shh", "quiet_today", "quiet-today"}, "Stop notifications for the rest of today", func(_ context.Context, c Controller) string { return c.QuietToday() }},
	{[]string{"unshh", "unquiet"}, "Cancel quiet-today", func(_ context.Context, c Controller) string { return c.Unquiet() }},
	{[]string{"config", "status"}, "Show settings and state", func(_ context.Context, c Controller) string { return c.StatusText() }},
	{[]string{"resettimer"}, "Restart the notification timer", func(_ context.Context, c Controller) string { return c.ResetTimer() }},
}

// BotCommands returns the command menu registered with Telegram.
func BotCommands() []tgbotapi.BotCommand {
	cmds := make([]tgbotapi.BotCommand, 0, len(commands)+1)
	for _, c := range commands {
		cmds = append(cmds, tgbotapi.BotCommand{Command: c.names[0], Description: c.description})
	}
	return append(cmds, tgbotapi.BotCommand{Command: "help", Description: "List commands"})
}

func helpText() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, c := range commands {
		b.WriteString("/" + strings.Join(c.names, ", /") + " - " + c.description + "\n")
	}
	b.WriteString("/help - List commands")
	return b.String()
}

// Handler answers chat commands.
type Handler struct {
	api   API
	ctrl  Controller
	retry resilience.RetryConfig
}

// NewHandler creates a command handler.
func NewHandler(api API, ctrl Controller) *Handler {
	return &Handler{api: api, ctrl: ctrl, retry: resilience.DefaultRetryConfig()}
}

// RegisterCommands publishes the command menu.
func (h *Handler) RegisterCommands(ctx context.Context) {
	if _, err := h.api.Request(tgbotapi.NewSetMyCommands(BotCommands()...)); err != nil {
		trace.Logger(ctx).Warn("set commands error", "error", err)
	}
}

// Listen polls for updates until ctx is cancelled.
func (h *Handler) Listen(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = PollTimeout
	updates := h.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	name := commandName(msg.Text)
	if name == "" {
		return
	}
	ctx, span := trace.StartSpan(ctx, "command")
	defer span.End()
	span.SetAttr("command", name)
	span.SetAttr("chat_id", msg.Chat.ID)

	reply, ok := h.Reply(ctx, name)
	if !ok {
		return
	}
	if err := send(ctx, h.api, h.retry, tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
		trace.Logger(ctx).Error("reply failed", "command", name, "error", err)
	}
}

// Reply runs the named command and returns its reply. Unknown commands are ignored.
func (h *Handler) Reply(ctx context.Context, name string) (string, bool) {
	if name == "help" {
		return helpText(), true
	}
	for _, c := range commands {
		for _, n := range c.names {
			if n == name {
				trace.Logger(ctx).Info("command", "name", name)
				return c.run(ctx, h.ctrl), true
			}
		}
	}
	return "", false
}

// commandName extracts "mute" from "/mute@SomeBot extra args". Hyphens are kept,
// which Telegram's own command entities would cut off.
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	name, _, _ := strings.Cut(fields[0][1:], "@")
	return strings.ToLower(name)
}
