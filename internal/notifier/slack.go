package notifier

import (
	"context"

	"github.com/rovshanmuradov/chain-monitor/internal/monconfig"
)

// SlackDestination posts to an incoming webhook (spec.md §4.4).
type SlackDestination struct {
	webhookURL string
	channel    string
}

// NewSlackDestination builds a destination from config, or returns nil if
// cfg has no webhook URL configured.
func NewSlackDestination(cfg monconfig.SlackConfig) *SlackDestination {
	if cfg.WebhookURL == "" {
		return nil
	}
	return &SlackDestination{webhookURL: cfg.WebhookURL, channel: cfg.Channel}
}

func (d *SlackDestination) Name() string { return string(monconfig.DestSlack) }

func (d *SlackDestination) Send(ctx context.Context, message string) error {
	return postJSON(ctx, d.Name(), d.webhookURL, struct {
		Channel string `json:"channel"`
		Text    string `json:"text"`
	}{Channel: d.channel, Text: message})
}
