package decoder

import "github.com/gagliardetto/solana-go"

// Stake-pool instruction discriminators: the leading byte of the
// instruction payload, per the SPL stake-pool program's wire format
// (spec.md §4.1 table).
const (
	discIncreaseValidatorStake             = 4
	discDepositStake                       = 9
	discWithdrawStake                      = 10
	discDepositSol                         = 14
	discWithdrawSol                        = 16
	discDecreaseValidatorStakeWithReserve = 19
)

// Fixed account-index positions per the SPL stake-pool program's account
// layout (SPEC_FULL.md §5.1).
const (
	stakePoolAccountIdx = 0
	poolMintAccountIdx  = 1
)

// StakePoolDecoder decodes instructions for one spl_stake_pool program
// deployment.
type StakePoolDecoder struct {
	programID solana.PublicKey
}

// NewStakePoolDecoder builds a decoder bound to programID.
func NewStakePoolDecoder(programID solana.PublicKey) *StakePoolDecoder {
	return &StakePoolDecoder{programID: programID}
}

// ProgramID implements ProgramDecoder.
func (d *StakePoolDecoder) ProgramID() solana.PublicKey {
	return d.programID
}

// Decode implements ProgramDecoder.
func (d *StakePoolDecoder) Decode(ix RawInstruction) (Decoded, error) {
	if len(ix.Data) < 1 {
		return Decoded{}, truncated("spl_stake_pool", 1, len(ix.Data))
	}

	out := StakePoolInstruction{}
	switch ix.Data[0] {
	case discIncreaseValidatorStake:
		out.Variant = IncreaseValidatorStake
		if len(ix.Data) < 17 {
			return Decoded{}, truncated("spl_stake_pool/increase_validator_stake", 17, len(ix.Data))
		}
		out.Lamports = readUint64LE(ix.Data, 1)
		out.TransientStakeSeed = readUint64LE(ix.Data, 9)

	case discDepositStake:
		out.Variant = DepositStake
		// No trailing fields.

	case discWithdrawStake:
		out.Variant = WithdrawStake
		if len(ix.Data) < 9 {
			return Decoded{}, truncated("spl_stake_pool/withdraw_stake", 9, len(ix.Data))
		}
		out.PoolTokens = readUint64LE(ix.Data, 1)

	case discDepositSol:
		out.Variant = DepositSol
		if len(ix.Data) < 9 {
			return Decoded{}, truncated("spl_stake_pool/deposit_sol", 9, len(ix.Data))
		}
		out.Lamports = readUint64LE(ix.Data, 1)

	case discWithdrawSol:
		out.Variant = WithdrawSol
		if len(ix.Data) < 9 {
			return Decoded{}, truncated("spl_stake_pool/withdraw_sol", 9, len(ix.Data))
		}
		out.PoolTokens = readUint64LE(ix.Data, 1)

	case discDecreaseValidatorStakeWithReserve:
		out.Variant = DecreaseValidatorStakeWithReserve
		if len(ix.Data) < 17 {
			return Decoded{}, truncated("spl_stake_pool/decrease_validator_stake_with_reserve", 17, len(ix.Data))
		}
		out.Lamports = readUint64LE(ix.Data, 1)
		out.TransientStakeSeed = readUint64LE(ix.Data, 9)

	default:
		return Decoded{Kind: KindSkip}, nil
	}

	if len(ix.Accounts) > stakePoolAccountIdx {
		out.StakePoolAccount = ix.Accounts[stakePoolAccountIdx]
	}
	if len(ix.Accounts) > poolMintAccountIdx {
		out.PoolMintAccount = ix.Accounts[poolMintAccountIdx]
	}

	return Decoded{Kind: KindStakePool, StakePool: &out}, nil
}
