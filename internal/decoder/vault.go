package decoder

import (
	"bytes"
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// anchorSighash computes the 8-byte Anchor instruction discriminator,
// sha256("global:<name>")[:8], applied here to bind the jito_vault
// program's instruction names per SPEC_FULL.md §5.1 / §12 (resolving
// spec.md §9's vault-IDL open question).
func anchorSighash(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

var (
	mintToDiscriminator            = anchorSighash("mint_to")
	enqueueWithdrawalDiscriminator = anchorSighash("enqueue_withdrawal")
)

// Fixed account-index position of the VRT mint in the jito_vault program's
// account layout (SPEC_FULL.md §5.1).
const vrtMintAccountIdx = 2

// VaultDecoder decodes instructions for one jito_vault program deployment.
type VaultDecoder struct {
	programID solana.PublicKey
}

// NewVaultDecoder builds a decoder bound to programID.
func NewVaultDecoder(programID solana.PublicKey) *VaultDecoder {
	return &VaultDecoder{programID: programID}
}

// ProgramID implements ProgramDecoder.
func (d *VaultDecoder) ProgramID() solana.PublicKey {
	return d.programID
}

// Decode implements ProgramDecoder.
func (d *VaultDecoder) Decode(ix RawInstruction) (Decoded, error) {
	if len(ix.Data) < 8 {
		return Decoded{}, truncated("jito_vault", 8, len(ix.Data))
	}

	var disc [8]byte
	copy(disc[:], ix.Data[:8])

	out := VaultInstruction{}
	switch {
	case bytes.Equal(disc[:], mintToDiscriminator[:]):
		out.Variant = MintTo
		if len(ix.Data) < 24 {
			return Decoded{}, truncated("jito_vault/mint_to", 24, len(ix.Data))
		}
		out.AmountIn = readUint64LE(ix.Data, 8)
		out.MinAmountOut = readUint64LE(ix.Data, 16)

	case bytes.Equal(disc[:], enqueueWithdrawalDiscriminator[:]):
		out.Variant = EnqueueWithdrawal
		if len(ix.Data) < 16 {
			return Decoded{}, truncated("jito_vault/enqueue_withdrawal", 16, len(ix.Data))
		}
		out.Amount = readUint64LE(ix.Data, 8)

	default:
		return Decoded{Kind: KindSkip}, nil
	}

	if len(ix.Accounts) > vrtMintAccountIdx {
		out.VRTMint = ix.Accounts[vrtMintAccountIdx]
	}

	return Decoded{Kind: KindVault, Vault: &out}, nil
}
