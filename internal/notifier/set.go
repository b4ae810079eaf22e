package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/chain-monitor/internal/monconfig"
	"github.com/rovshanmuradov/chain-monitor/internal/monlog"
)

// Set is the immutable registry of destination implementations built once
// from config (spec.md §9's "notifier dispatch" guidance). A destination
// whose credentials were empty at construction time is absent from the
// registry; sending to it yields Misconfigured.
type Set struct {
	destinations map[string]Destination
	logger       *monlog.Logger
}

// NewSet builds a Set from the active notifications config. Destinations
// with missing credentials are silently omitted — spec.md §3's invariant
// that absence is a send-time error, not a load-time one.
func NewSet(cfg monconfig.NotificationsConfig, logger *monlog.Logger) *Set {
	destinations := make(map[string]Destination)

	if d := NewSlackDestination(cfg.Slack); d != nil {
		destinations[d.Name()] = d
	}
	if d := NewDiscordDestination(cfg.Discord); d != nil {
		destinations[d.Name()] = d
	}
	if d := NewTelegramDestination(cfg.Telegram); d != nil {
		destinations[d.Name()] = d
	}
	if d := NewTwitterDestination(cfg.Twitter); d != nil {
		destinations[d.Name()] = d
	}

	return &Set{destinations: destinations, logger: monlog.Wrap(logger.WithComponent("notifier"))}
}

// NewSetForTest builds a Set from explicit destinations, bypassing config
// wiring — used by chainstream's driver tests to observe dispatched
// messages without standing up real HTTP servers for every channel.
func NewSetForTest(destinations map[string]Destination) *Set {
	return &Set{destinations: destinations, logger: monlog.Wrap(zap.NewNop())}
}

// Send dispatches message to the named destination. It never returns an
// error to the caller — every failure mode is logged here, per spec.md
// §7's "never retried; never propagated" policy — so callers can fire
// sends concurrently without per-call error handling.
//
// programAlias/instructionName/txHash are the originating event's
// identifiers (spec.md §7: NotifyError is "logged at warn with destination
// and event identifiers").
func (s *Set) Send(ctx context.Context, destination monconfig.DestinationID, message, programAlias, instructionName, txHash string) {
	eventLogger := s.logger.WithEvent(programAlias, instructionName, txHash)

	d, ok := s.destinations[string(destination)]
	if !ok {
		eventLogger.Warn("notify failed", zap.String("destination", string(destination)), zap.Error(misconfigured(string(destination))))
		return
	}
	if err := d.Send(ctx, message); err != nil {
		eventLogger.Warn("notify failed", zap.String("destination", string(destination)), zap.Error(err))
	}
}
