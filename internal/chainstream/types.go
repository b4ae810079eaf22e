// Package chainstream drives the upstream transaction subscription and
// fans decoded, classified, policy-matched events into the notifier set
// (spec.md §4.5). The transport itself is a swappable concrete detail; the
// Driver depends only on the TransactionSource interface.
package chainstream

import (
	"context"

	"github.com/rovshanmuradov/chain-monitor/internal/classifier"
	"github.com/rovshanmuradov/chain-monitor/internal/decoder"
)

// TransactionUpdate is one transaction pulled from the upstream feed,
// already demuxed into its ordered instruction list plus the token-balance
// deltas the classifier correlates against.
type TransactionUpdate struct {
	Signature     string
	Instructions  []decoder.RawInstruction
	TokenBalances []classifier.TokenBalanceRecord
}

// TransactionSource streams TransactionUpdates for a connection's
// lifetime. Run blocks until ctx is canceled or the connection fails; it
// never reconnects itself — the Driver owns backoff and reconnection.
//
// The union of every monitored program's on-chain identity, used to scope
// the upstream subscription filter, is exposed by the decoder.Registry
// built for the active config (decoder.Registry.ProgramIDs) rather than
// duplicated here.
type TransactionSource interface {
	Run(ctx context.Context, updates chan<- TransactionUpdate) error
}
