// Package policy resolves a classified Event against the loaded Config's
// threshold rules into an ordered list of rendered, destination-addressed
// notifications (spec.md §4.3). The engine is pure: same Config plus same
// Event always produces the same output.
package policy

import (
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/chain-monitor/internal/classifier"
	"github.com/rovshanmuradov/chain-monitor/internal/monconfig"
)

// Notification is one rendered, destination-addressed message ready for
// the notifier set to dispatch. It carries the originating event's
// identifiers alongside the rendered text so the notifier set can attach
// them to its failure logs (spec.md §7: "logged at warn with destination
// and event identifiers").
type Notification struct {
	Destination          monconfig.DestinationID
	Message              string
	ProgramAlias         string
	InstructionName      string
	TransactionSignature string
}

// Engine resolves Events against an immutable Config.
type Engine struct {
	cfg *monconfig.Config
}

// New builds an Engine bound to cfg.
func New(cfg *monconfig.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Resolve implements spec.md §4.3's resolution algorithm. Absence at any
// lookup step yields zero notifications, not an error.
func (e *Engine) Resolve(ev classifier.Event) []Notification {
	prog, ok := e.cfg.Programs[ev.ProgramAlias]
	if !ok {
		return nil
	}
	rule, ok := prog.Instructions[ev.InstructionName]
	if !ok {
		return nil
	}
	thresholdList, ok := rule.Thresholds[ev.AssetKey]
	if !ok {
		return nil
	}

	type pair struct {
		dest monconfig.DestinationID
		desc string
	}
	seen := make(map[pair]struct{})
	var out []Notification

	for _, th := range thresholdList.Thresholds {
		if !thresholdMatches(th, ev) {
			continue
		}
		for _, dest := range th.Notification.Destinations {
			p := pair{dest: dest, desc: th.Notification.Description}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			tmpl := selectTemplate(e.cfg.MessageTemplates, dest)
			out = append(out, Notification{
				Destination:          dest,
				Message:              render(tmpl, th.Notification.Description, ev, e.cfg.ExplorerURL),
				ProgramAlias:         ev.ProgramAlias,
				InstructionName:      ev.InstructionName,
				TransactionSignature: ev.TransactionSignature,
			})
		}
	}
	return out
}

// thresholdMatches implements the "value <= amount" matching rule
// literally (spec.md §3): amount zero matches only a threshold whose value
// is zero or negative; the loader does not reject such values.
func thresholdMatches(th monconfig.Threshold, ev classifier.Event) bool {
	return ev.AmountHuman.GreaterThanOrEqual(decimal.NewFromFloat(th.Value))
}
