package notifier

import (
	"context"
	"fmt"

	"github.com/rovshanmuradov/chain-monitor/internal/monconfig"
)

// TelegramDestination posts via the Bot API's sendMessage method
// (spec.md §4.4).
type TelegramDestination struct {
	url    string
	chatID string
}

// NewTelegramDestination builds a destination from config, or returns nil
// if cfg has no bot token configured.
func NewTelegramDestination(cfg monconfig.TelegramConfig) *TelegramDestination {
	if cfg.BotToken == "" {
		return nil
	}
	return &TelegramDestination{
		url:    fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", cfg.BotToken),
		chatID: cfg.ChatID,
	}
}

func (d *TelegramDestination) Name() string { return string(monconfig.DestTelegram) }

func (d *TelegramDestination) Send(ctx context.Context, message string) error {
	return postJSON(ctx, d.Name(), d.url, struct {
		ChatID string `json:"chat_id"`
		Text   string `json:"text"`
	}{ChatID: d.chatID, Text: message})
}
