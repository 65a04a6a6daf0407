package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"TVRelay/internal/domain/models"
	"TVRelay/internal/domain/repository"
)

// Option configures Sink.
type Option func(*Sink)

// WithEndpoint overrides the Bot API endpoint format
// (default tgbot.APIEndpoint, "https://api.telegram.org/bot%s/%s").
func WithEndpoint(endpoint string) Option {
	return func(s *Sink) { s.endpoint = endpoint }
}

// Sink sends notifications as plain text messages to one chat.
type Sink struct {
	chatID   int64
	endpoint string
	bot      *tgbot.BotAPI
}

var _ repository.Sink = (*Sink)(nil)

// New builds the sink without contacting Telegram; the token is only
// checked when the first message is sent.
func New(token string, chatID int64, timeout time.Duration, opts ...Option) *Sink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &Sink{chatID: chatID, endpoint: tgbot.APIEndpoint}
	for _, opt := range opts {
		opt(s)
	}
	if token != "" {
		s.bot = &tgbot.BotAPI{
			Token:  token,
			Client: &http.Client{Timeout: timeout},
			Buffer: 100,
		}
		s.bot.SetAPIEndpoint(s.endpoint)
	}
	return s
}

func (s *Sink) Name() string  { return models.SinkTelegram }
func (s *Sink) Enabled() bool { return s.bot != nil && s.chatID != 0 }

func (s *Sink) Send(ctx context.Context, n models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbot.NewMessage(s.chatID, n.Subject+"\n\n"+n.Body)
	msg.DisableWebPagePreview = true
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}
