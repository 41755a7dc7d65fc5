package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/rs/zerolog"

	"uptime-monitor/internal/config"
	"uptime-monitor/internal/model"
)

// TelegramNotifier sends alert events to a Telegram chat.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID string
	logger zerolog.Logger
}

// NewTelegramNotifier creates a Telegram transport.
func NewTelegramNotifier(cfg config.TelegramConfig, logger zerolog.Logger) (*TelegramNotifier, error) {
	b, err := bot.New(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    b,
		chatID: cfg.ChatID,
		logger: logger.With().Str("component", "telegram-notifier").Logger(),
	}, nil
}

// Name implements Notifier.
func (n *TelegramNotifier) Name() string {
	return "telegram"
}

// Send implements Notifier.
func (n *TelegramNotifier) Send(ctx context.Context, event *model.AlertEvent) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   telegramMessage(event),
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func telegramMessage(event *model.AlertEvent) string {
	header := "🚨 DOWN"
	if event.Kind == model.EventClose {
		header = "✅ UP"
	}
	return fmt.Sprintf("%s: %s\n%s\nAt: %s",
		header,
		event.MonitorName,
		event.Message,
		event.At.UTC().Format("2006-01-02 15:04 MST"))
}
