// Package decoder parses raw Solana program instructions into typed
// variants for the two monitored programs (spl_stake_pool, jito_vault),
// per spec.md §4.1. Unknown instructions are skipped, not errored.
package decoder

import "github.com/gagliardetto/solana-go"

// RawInstruction is the decoder's input: one instruction invocation from a
// transaction, however that transaction was sourced.
type RawInstruction struct {
	ProgramID solana.PublicKey
	Accounts  []solana.PublicKey
	Data      []byte
}

// Kind tags which variant a Decoded instruction carries.
type Kind int

const (
	KindSkip Kind = iota
	KindStakePool
	KindVault
)

// StakePoolVariant enumerates the recognized spl_stake_pool instructions.
type StakePoolVariant string

const (
	IncreaseValidatorStake             StakePoolVariant = "increase_validator_stake"
	DepositStake                       StakePoolVariant = "deposit_stake"
	WithdrawStake                      StakePoolVariant = "withdraw_stake"
	DepositSol                         StakePoolVariant = "deposit_sol"
	WithdrawSol                        StakePoolVariant = "withdraw_sol"
	DecreaseValidatorStakeWithReserve StakePoolVariant = "decrease_validator_stake_with_reserve"
)

// StakePoolInstruction is the decoded form of one spl_stake_pool
// instruction, carrying only the fields relevant to that variant.
type StakePoolInstruction struct {
	Variant             StakePoolVariant
	Lamports            uint64 // IncreaseValidatorStake, DecreaseValidatorStakeWithReserve, DepositSol
	TransientStakeSeed  uint64 // IncreaseValidatorStake, DecreaseValidatorStakeWithReserve
	PoolTokens          uint64 // WithdrawStake, WithdrawSol
	StakePoolAccount    solana.PublicKey
	PoolMintAccount     solana.PublicKey
}

// VaultVariant enumerates the recognized jito_vault instructions.
type VaultVariant string

const (
	MintTo            VaultVariant = "mint_to"
	EnqueueWithdrawal VaultVariant = "enqueue_withdrawal"
)

// VaultInstruction is the decoded form of one jito_vault instruction.
type VaultInstruction struct {
	Variant      VaultVariant
	AmountIn     uint64 // MintTo
	MinAmountOut uint64 // MintTo
	Amount       uint64 // EnqueueWithdrawal
	VRTMint      solana.PublicKey
}

// Decoded is the decoder's tagged-variant output.
type Decoded struct {
	Kind      Kind
	StakePool *StakePoolInstruction
	Vault     *VaultInstruction
}

// ProgramDecoder decodes instructions belonging to one on-chain program.
type ProgramDecoder interface {
	ProgramID() solana.PublicKey
	Decode(ix RawInstruction) (Decoded, error)
}
