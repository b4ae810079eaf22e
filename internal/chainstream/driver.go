package chainstream

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/rovshanmuradov/chain-monitor/internal/classifier"
	"github.com/rovshanmuradov/chain-monitor/internal/decoder"
	"github.com/rovshanmuradov/chain-monitor/internal/monconfig"
	"github.com/rovshanmuradov/chain-monitor/internal/notifier"
	"github.com/rovshanmuradov/chain-monitor/internal/policy"
)

// reconnectFailureWindow and maxReconnectFailures implement spec.md §7's
// "3 consecutive failures within 60s is fatal" rule.
const (
	reconnectFailureWindow = 60 * time.Second
	maxReconnectFailures   = 3
	drainTimeout           = 5 * time.Second
)

// Driver owns the reconnect loop and the per-transaction pipeline:
// decode -> classify -> resolve policy -> dispatch notifications (spec.md
// §4.5).
type Driver struct {
	source         TransactionSource
	registry       *decoder.Registry
	programAliases map[solana.PublicKey]string
	classifier     *classifier.Classifier
	engine         *policy.Engine
	notifiers      *notifier.Set
	sem            *semaphore.Weighted
	concurrency    int64
	logger         *zap.Logger
}

// New builds a Driver. concurrency bounds the number of in-flight
// notification dispatch goroutines (spec.md §5's backpressure rule).
func New(
	source TransactionSource,
	registry *decoder.Registry,
	programAliases map[solana.PublicKey]string,
	clf *classifier.Classifier,
	engine *policy.Engine,
	notifiers *notifier.Set,
	concurrency int64,
	logger *zap.Logger,
) *Driver {
	return &Driver{
		source:         source,
		registry:       registry,
		programAliases: programAliases,
		classifier:     clf,
		engine:         engine,
		notifiers:      notifiers,
		sem:            semaphore.NewWeighted(concurrency),
		concurrency:    concurrency,
		logger:         logger.Named("chainstream"),
	}
}

// Run drives the reconnect loop until ctx is canceled (graceful shutdown)
// or the persistent-failure budget is exhausted (fatal StreamError).
func (d *Driver) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.RandomizationFactor = 0.2
	bo.Multiplier = 2

	var failures []time.Time

	for {
		if ctx.Err() != nil {
			return d.drain(ctx)
		}

		connErr := d.runOnce(ctx)
		if ctx.Err() != nil {
			return d.drain(ctx)
		}
		if connErr == nil {
			continue
		}

		d.logger.Warn("stream disconnected, reconnecting", zap.Error(connErr))

		now := time.Now()
		failures = appendWithinWindow(failures, now, reconnectFailureWindow)
		if len(failures) >= maxReconnectFailures {
			return &StreamError{Reason: "persistent reconnect failure", Err: connErr, Fatal: true}
		}

		select {
		case <-ctx.Done():
			return d.drain(ctx)
		case <-time.After(bo.NextBackOff()):
		}
	}
}

func appendWithinWindow(times []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return append(kept, now)
}

// runOnce drives a single connection's lifetime: dial/subscribe via the
// source, consume updates until the connection fails or ctx is canceled.
func (d *Driver) runOnce(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan TransactionUpdate)
	sourceErr := make(chan error, 1)
	go func() {
		sourceErr <- d.source.Run(runCtx, updates)
	}()

	for {
		select {
		case <-runCtx.Done():
			<-sourceErr
			return nil
		case err := <-sourceErr:
			return err
		case update, ok := <-updates:
			if !ok {
				return <-sourceErr
			}
			d.handleTransaction(runCtx, update)
		}
	}
}

// handleTransaction processes one transaction's instructions in stream
// order (spec.md §5's ordering rule), dispatching notifications for each
// decoded, classified, policy-matched instruction.
func (d *Driver) handleTransaction(ctx context.Context, update TransactionUpdate) {
	txRecord := classifier.TransactionRecord{
		Signature:     update.Signature,
		TokenBalances: update.TokenBalances,
	}

	for _, ix := range update.Instructions {
		decoded, err := d.registry.Decode(ix)
		if err != nil {
			d.logger.Debug("decode failed", zap.String("signature", update.Signature), zap.Error(err))
			continue
		}
		if decoded.Kind == decoder.KindSkip {
			continue
		}

		alias, ok := d.programAliases[ix.ProgramID]
		if !ok {
			continue
		}

		ev, err := d.classifier.Classify(ctx, alias, decoded, txRecord)
		if err != nil {
			d.logger.Warn("classify failed", zap.String("signature", update.Signature), zap.Error(err))
			continue
		}
		if ev == nil {
			continue
		}

		notifications := d.engine.Resolve(*ev)
		for _, n := range notifications {
			d.dispatch(ctx, n)
		}
	}
}

// dispatch acquires a bounded-concurrency slot before spawning the send,
// blocking the upstream pull loop if the pool is saturated (spec.md §4.5).
func (d *Driver) dispatch(ctx context.Context, n policy.Notification) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return
	}
	// In-flight sends run on their own background context so a driver
	// shutdown doesn't abort a send already underway; each destination
	// still enforces its own send timeout.
	go func() {
		defer d.sem.Release(1)
		d.notifiers.Send(context.Background(), n.Destination, n.Message, n.ProgramAlias, n.InstructionName, n.TransactionSignature)
	}()
}

// drain waits for in-flight notification sends to finish, up to
// drainTimeout, on graceful shutdown (spec.md §5): reacquiring every
// permit proves every outstanding send has released its slot.
func (d *Driver) drain(_ context.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	_ = d.sem.Acquire(ctx, d.concurrency)
	return nil
}
