// Package telegram connects the notifier to a Telegram group chat
package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/errors"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/resilience"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/trace"
)

// PollTimeout is the long-polling timeout for getUpdates, in seconds.
const PollTimeout = 60

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Connect authenticates with the Bot API.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, "telegram bot init")
	}
	return api, nil
}

// Target is a destination chat: a numeric id or a public @channel username.
type Target struct {
	ChatID   int64
	Username string
}

// ParseTarget parses a group_chat_id value.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "@") && len(s) > 1 {
		return Target{Username: s}, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Target{}, apperrors.Newf(apperrors.ConfigInvalid, "group_chat_id %q is neither a chat id nor an @channel", s)
	}
	return Target{ChatID: id}, nil
}

func (t Target) String() string {
	if t.Username != "" {
		return t.Username
	}
	return strconv.FormatInt(t.ChatID, 10)
}

// message builds a text message for the target.
func (t Target) message(text string) tgbotapi.MessageConfig {
	if t.Username != "" {
		return tgbotapi.NewMessageToChannel(t.Username, text)
	}
	return tgbotapi.NewMessage(t.ChatID, text)
}

// Notifier posts cycle notifications to the group chat.
type Notifier struct {
	api    API
	target Target
	retry  resilience.RetryConfig
}

// NewNotifier creates a notifier that retries transient Bot API failures.
func NewNotifier(api API, target Target) *Notifier {
	return &Notifier{api: api, target: target, retry: resilience.DefaultRetryConfig()}
}

// Notify sends text to the group chat.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	return send(ctx, n.api, n.retry, n.target.message(text))
}

func send(ctx context.Context, api API, retry resilience.RetryConfig, msg tgbotapi.MessageConfig) error {
	err := resilience.Retry(ctx, retry, func() error {
		_, err := api.Send(msg)
		return err
	})
	if err != nil {
		trace.Logger(ctx).Debug("telegram send failed", "error", err)
		return apperrors.Wrap(err, apperrors.SendFailed, "telegram send")
	}
	return nil
}
