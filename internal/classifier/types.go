// Package classifier turns a decoded instruction plus its enclosing
// transaction into an Event whose amount reflects the actual value moved
// (spec.md §4.2).
package classifier

import "github.com/shopspring/decimal"

// TokenBalanceRecord is one mint's pre/post balance within a transaction,
// in raw on-chain integer units.
type TokenBalanceRecord struct {
	Mint       string // base58
	PreRaw     uint64
	PostRaw    uint64
}

// TransactionRecord is the shape the classifier consumes from the
// enclosing transaction — deliberately minimal, per spec.md §1's scoping
// of the stream transport out of this spec's core.
type TransactionRecord struct {
	Signature     string
	TokenBalances []TokenBalanceRecord
}

// CurrencyUnit labels the human-facing unit an Event's amount is expressed
// in, used by the policy engine's {{currency_unit}} placeholder.
type CurrencyUnit string

const (
	UnitSOL CurrencyUnit = "SOL"
	UnitVRT CurrencyUnit = "VRT"
)

// Event is the classifier's output: one decoded, amount-resolved,
// asset-keyed occurrence ready for policy evaluation (spec.md §3).
type Event struct {
	ProgramAlias         string
	InstructionName      string
	AssetKey             string // base58 address, matched by string equality against config
	AmountHuman          decimal.Decimal
	CurrencyUnit         CurrencyUnit
	TransactionSignature string
}
