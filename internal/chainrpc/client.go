// Package chainrpc is a thin adapter over the upstream Solana RPC endpoint,
// used by the classifier to resolve mint decimals (spec.md §4.2). It
// deliberately exposes only what the monitor needs, mirroring the
// teacher's internal/blockchain/solbc.Client adapter.
package chainrpc

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// MintMetadataTimeout is the hard timeout for a single mint-account RPC
// fetch (spec.md §5).
const MintMetadataTimeout = 5 * time.Second

// SPL token mint accounts lay out COption<Pubkey> mint_authority (36
// bytes), u64 supply (8 bytes), then a single decimals byte.
const mintDecimalsOffset = 36 + 8

// Client wraps a solana-go RPC client for the monitor's read-only needs.
type Client struct {
	rpc    *rpc.Client
	logger *zap.Logger
}

// New builds a Client bound to rpcURL.
func New(rpcURL string, logger *zap.Logger) *Client {
	return &Client{
		rpc:    rpc.New(rpcURL),
		logger: logger.Named("chainrpc"),
	}
}

// MintDecimals fetches and parses the decimals field of an SPL mint
// account. It is the single-upstream-call classifier cache misses fall
// through to (spec.md §4.2).
func (c *Client) MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	ctx, cancel := context.WithTimeout(ctx, MintMetadataTimeout)
	defer cancel()

	info, err := c.rpc.GetAccountInfo(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("get mint account %s: %w", mint, err)
	}
	if info == nil || info.Value == nil {
		return 0, fmt.Errorf("mint account %s not found", mint)
	}

	data := info.Value.Data.GetBinary()
	if len(data) <= mintDecimalsOffset {
		return 0, fmt.Errorf("mint account %s: data too short for decimals field", mint)
	}

	return data[mintDecimalsOffset], nil
}
