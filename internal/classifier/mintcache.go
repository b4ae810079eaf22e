package classifier

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/singleflight"
)

// MintDecimalsFetcher performs the single upstream RPC call a cache miss
// falls through to (spec.md §4.2).
type MintDecimalsFetcher interface {
	MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
}

// DecimalsCache is the read-through, never-invalidated cache mapping mint
// address to decimals (spec.md §3 invariant: "a successful lookup never
// changes its cached value within the process lifetime"). Concurrent
// misses for the same mint are coalesced into a single upstream call via
// singleflight, per SPEC_FULL.md §5.2 / spec.md §9's design note.
type DecimalsCache struct {
	fetcher MintDecimalsFetcher
	cache   sync.Map // string(base58 mint) -> uint8
	group   singleflight.Group
}

// NewDecimalsCache builds a cache backed by fetcher.
func NewDecimalsCache(fetcher MintDecimalsFetcher) *DecimalsCache {
	return &DecimalsCache{fetcher: fetcher}
}

// Decimals returns the cached decimals for mint, fetching and caching it
// on first use.
func (c *DecimalsCache) Decimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	key := mint.String()
	if v, ok := c.cache.Load(key); ok {
		return v.(uint8), nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.cache.Load(key); ok {
			return v.(uint8), nil
		}
		decimals, err := c.fetcher.MintDecimals(ctx, mint)
		if err != nil {
			return nil, err
		}
		c.cache.Store(key, decimals)
		return decimals, nil
	})
	if err != nil {
		return 0, mintMetadataUnavailable(key, err)
	}
	return v.(uint8), nil
}
