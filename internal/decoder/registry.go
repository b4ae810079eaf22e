package decoder

import (
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Registry dispatches a raw instruction to the ProgramDecoder registered
// for its program ID. Extension is additive: new programs register
// themselves without touching existing entries.
type Registry struct {
	mu       sync.RWMutex
	decoders map[solana.PublicKey]ProgramDecoder
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[solana.PublicKey]ProgramDecoder)}
}

// Register adds a decoder for its own ProgramID.
func (r *Registry) Register(d ProgramDecoder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.decoders[d.ProgramID()]; exists {
		return fmt.Errorf("decoder registry: program %s already registered", d.ProgramID())
	}
	r.decoders[d.ProgramID()] = d
	return nil
}

// ProgramIDs returns every program ID this registry currently dispatches
// for, suitable for subscribing a transaction stream filtered to exactly
// these programs (spec.md §4.5).
func (r *Registry) ProgramIDs() []solana.PublicKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]solana.PublicKey, 0, len(r.decoders))
	for id := range r.decoders {
		ids = append(ids, id)
	}
	return ids
}

// Decode routes ix to its program's decoder. If no decoder is registered
// for ix.ProgramID, the instruction is skipped (it belongs to a program
// this deployment doesn't monitor).
func (r *Registry) Decode(ix RawInstruction) (Decoded, error) {
	r.mu.RLock()
	d, ok := r.decoders[ix.ProgramID]
	r.mu.RUnlock()

	if !ok {
		return Decoded{Kind: KindSkip}, nil
	}
	return d.Decode(ix)
}
