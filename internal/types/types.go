// Package types holds the core data model shared across state, execution,
// mempool, and consensus (spec §3): accounts, transactions, blocks, and
// receipts. Types here are plain value structs; none of them own a mutex or
// a backing store — ownership lives in the subsystem packages that consume
// them (state, mempool, node).
package types

import "github.com/animicaorg/animica-node/internal/idhash"

// Address is a raw 20-byte account identifier. It is hex-rendered with a
// "0x" prefix at the edges (RPC, CLI); internally it is always compared and
// stored as raw bytes.
type Address [20]byte

// Hex renders the address as a lowercase "0x"-prefixed hex string.
func (a Address) Hex() string {
	return idhash.Digest(pad32(a)).Hex()[:42]
}

func (a Address) String() string { return a.Hex() }

// Less provides the ascending raw-byte order state roots are computed over.
func (a Address) Less(b Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func pad32(a Address) [32]byte {
	var out [32]byte
	copy(out[12:], a[:])
	return out
}

// Account is the per-address consensus state (spec §3). Balance is
// represented as a big.Int-backed amount (see Amount) to hold u128 nano-
// native values without overflow.
type Account struct {
	Nonce    uint64
	Balance  Amount
	CodeHash idhash.Digest
}

// Transaction is the wire/consensus transaction shape (spec §3). `To` is
// nil for a contract deploy. `Signature` is optional at this layer — the
// core treats signature verification as a capability consumed, not
// reimplemented, by execution.
type Transaction struct {
	Sender    Address
	To        *Address
	Value     Amount
	GasLimit  uint64
	GasPrice  uint64
	Nonce     uint64
	ChainID   uint64
	Data      []byte
	Signature []byte
}

// EffectiveFee returns gas_limit * gas_price, computed exactly rather than
// overflowing: gas_limit and gas_price are both u64, so the product fits in
// a u128 Amount.
func (t *Transaction) EffectiveFee() Amount {
	return NewAmountFromUint64(t.GasLimit).MulUint64(t.GasPrice)
}

// Meta carries admission-time metadata that may override values derivable
// from the transaction itself (spec §4.5.1).
type Meta struct {
	SizeBytes       int
	EffectiveFeeWei *Amount // nil means "derive from the transaction"
}

// ReceiptStatus enumerates the possible outcomes of applying a transaction.
type ReceiptStatus int

const (
	StatusSuccess ReceiptStatus = iota
	StatusRevert
	StatusOOM
)

func (s ReceiptStatus) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusRevert:
		return "REVERT"
	case StatusOOM:
		return "OOM"
	default:
		return "UNKNOWN"
	}
}

// Log is a single event emitted by a transaction.
type Log struct {
	Address Address
	Topics  [][]byte
	Data    []byte
}

// Receipt records the outcome of applying one transaction (spec §3).
type Receipt struct {
	TxHash   idhash.Digest
	Status   ReceiptStatus
	GasUsed  uint64
	Logs     []Log
}

// Block is the consensus block shape (spec §3). It carries the transactions
// themselves in Txs; no separate list of transaction hashes is kept.
type Block struct {
	Height           uint64
	ParentHash       idhash.Digest
	Coinbase         Address
	Timestamp        uint64
	Txs              []*Transaction
	StateRoot        idhash.Digest
	ReceiptsRoot     idhash.Digest
	AcceptanceScalarMicro int64
	ProofSetDigest   idhash.Digest
	PowDrawMicro     int64
}

// ProofType enumerates the useful-work proof categories accepted by the
// proof selector (spec §3, §4.6).
type ProofType string

const (
	ProofHash    ProofType = "hash"
	ProofAI      ProofType = "ai"
	ProofQuantum ProofType = "quantum"
	ProofStorage ProofType = "storage"
	ProofVDF     ProofType = "vdf"
)

// ProofCandidate is one candidate proof of useful work offered by a miner.
type ProofCandidate struct {
	Type ProofType
	Psi  float64
	Meta []byte
}

// ProviderRecord is the slashing-engine's persisted per-provider state
// (spec §3, §4.8). Fields are concrete — no attribute probing, per the
// design notes in spec §9.
type ProviderRecord struct {
	ProviderID      string
	Stake           Amount
	Jailed          bool
	JailUntilHeight uint64
	Violations      uint32
}

// BanlistEntry is a mempool sender ban (spec §3, §4.5.3). BanUntil is a
// logical second, not wall-clock time.
type BanlistEntry struct {
	Sender   Address
	BanUntil int64
}
