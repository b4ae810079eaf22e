package notifier

import (
	"context"

	"github.com/rovshanmuradov/chain-monitor/internal/monconfig"
)

// DiscordDestination posts to an incoming webhook (spec.md §4.4).
type DiscordDestination struct {
	webhookURL string
}

// NewDiscordDestination builds a destination from config, or returns nil
// if cfg has no webhook URL configured.
func NewDiscordDestination(cfg monconfig.DiscordConfig) *DiscordDestination {
	if cfg.WebhookURL == "" {
		return nil
	}
	return &DiscordDestination{webhookURL: cfg.WebhookURL}
}

func (d *DiscordDestination) Name() string { return string(monconfig.DestDiscord) }

func (d *DiscordDestination) Send(ctx context.Context, message string) error {
	return postJSON(ctx, d.Name(), d.webhookURL, struct {
		Content string `json:"content"`
	}{Content: message})
}
