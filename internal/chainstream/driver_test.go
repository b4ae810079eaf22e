package chainstream

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/chain-monitor/internal/classifier"
	"github.com/rovshanmuradov/chain-monitor/internal/decoder"
	"github.com/rovshanmuradov/chain-monitor/internal/monconfig"
	"github.com/rovshanmuradov/chain-monitor/internal/notifier"
	"github.com/rovshanmuradov/chain-monitor/internal/policy"
)

// fakeSource replays a fixed set of updates, then blocks until ctx is
// canceled (or a forced error fires), simulating one connection lifetime.
type fakeSource struct {
	updates []TransactionUpdate
	failAt  error
}

func (s *fakeSource) Run(ctx context.Context, updates chan<- TransactionUpdate) error {
	for _, u := range s.updates {
		select {
		case updates <- u:
		case <-ctx.Done():
			return nil
		}
	}
	if s.failAt != nil {
		return s.failAt
	}
	<-ctx.Done()
	return nil
}

func stakePoolProgramID() solana.PublicKey {
	return solana.MustPublicKeyFromBase58("SPoo1Ku8WFXoNDMHPsrGSTSG1Y47rzgn41SLUNakuHy")
}

func depositSolInstruction(programID, poolMint solana.PublicKey, lamports uint64) decoder.RawInstruction {
	data := make([]byte, 9)
	data[0] = 14 // discDepositSol
	binary.LittleEndian.PutUint64(data[1:], lamports)
	return decoder.RawInstruction{
		ProgramID: programID,
		Accounts:  []solana.PublicKey{solana.PublicKey{}, poolMint},
		Data:      data,
	}
}

func testConfig(poolMint string) *monconfig.Config {
	return &monconfig.Config{
		Programs: map[string]monconfig.ProgramSpec{
			"spl_stake_pool": {
				ProgramID: stakePoolProgramID().String(),
				Instructions: map[string]monconfig.InstructionRule{
					"deposit_sol": {
						Bucket: monconfig.BucketLSTs,
						Thresholds: map[string]monconfig.ThresholdList{
							poolMint: {Thresholds: []monconfig.Threshold{
								{Value: 0.1, Notification: monconfig.Notification{
									Description:  "deposit detected",
									Destinations: []monconfig.DestinationID{monconfig.DestSlack},
								}},
							}},
						},
					},
				},
			},
		},
		MessageTemplates: map[string]string{"default": "{{description}}: {{amount}} {{currency_unit}}"},
	}
}

type recordingDestination struct {
	mu   sync.Mutex
	msgs []string
}

func (d *recordingDestination) Name() string { return string(monconfig.DestSlack) }
func (d *recordingDestination) Send(_ context.Context, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgs = append(d.msgs, message)
	return nil
}

func newDriverForTest(t *testing.T, source TransactionSource, poolMint solana.PublicKey) (*Driver, *recordingDestination) {
	t.Helper()
	cfg := testConfig(poolMint.String())

	registry := decoder.NewRegistry()
	require.NoError(t, registry.Register(decoder.NewStakePoolDecoder(stakePoolProgramID())))

	clf := classifier.New(classifier.NewDecimalsCache(nil))
	engine := policy.New(cfg)

	dest := &recordingDestination{}
	set := notifier.NewSetForTest(map[string]notifier.Destination{string(monconfig.DestSlack): dest})

	driver := New(
		source,
		registry,
		map[solana.PublicKey]string{stakePoolProgramID(): "spl_stake_pool"},
		clf,
		engine,
		set,
		4,
		zaptest.NewLogger(t),
	)
	return driver, dest
}

func TestDriver_DecodesClassifiesAndDispatches(t *testing.T) {
	poolMint := solana.NewWallet().PublicKey()
	update := TransactionUpdate{
		Signature:    "sig-1",
		Instructions: []decoder.RawInstruction{depositSolInstruction(stakePoolProgramID(), poolMint, 200_000_000_000)},
	}
	source := &fakeSource{updates: []TransactionUpdate{update}}
	driver, dest := newDriverForTest(t, source, poolMint)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := driver.Run(ctx)
	require.NoError(t, err)

	dest.mu.Lock()
	defer dest.mu.Unlock()
	require.Len(t, dest.msgs, 1)
	assert.Contains(t, dest.msgs[0], "deposit detected")
	assert.Contains(t, dest.msgs[0], "200")
}

func TestDriver_UnknownDiscriminator_SkipsWithoutNotification(t *testing.T) {
	poolMint := solana.NewWallet().PublicKey()
	badData := make([]byte, 9)
	badData[0] = 99
	update := TransactionUpdate{
		Signature: "sig-2",
		Instructions: []decoder.RawInstruction{{
			ProgramID: stakePoolProgramID(),
			Accounts:  []solana.PublicKey{solana.PublicKey{}, poolMint},
			Data:      badData,
		}},
	}
	source := &fakeSource{updates: []TransactionUpdate{update}}
	driver, dest := newDriverForTest(t, source, poolMint)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	require.NoError(t, driver.Run(ctx))

	dest.mu.Lock()
	defer dest.mu.Unlock()
	assert.Empty(t, dest.msgs)
}

func TestDriver_Run_FatalAfterPersistentReconnectFailures(t *testing.T) {
	source := &fakeSource{failAt: errors.New("dial refused")}
	driver, _ := newDriverForTest(t, source, solana.NewWallet().PublicKey())

	// Run without cancellation: the source fails immediately every time,
	// so three failures within the 60s window trip the fatal threshold
	// fast (backoff is short relative to the test timeout).
	errCh := make(chan error, 1)
	go func() { errCh <- driver.Run(context.Background()) }()

	select {
	case err := <-errCh:
		var streamErr *StreamError
		require.ErrorAs(t, err, &streamErr)
		assert.True(t, streamErr.Fatal)
	case <-time.After(10 * time.Second):
		t.Fatal("driver did not report a fatal stream error in time")
	}
}
