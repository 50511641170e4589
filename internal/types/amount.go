package types

import "math/big"

// Amount is a non-negative nano-native token amount (1e-9 of one unit, per
// spec §3 and the Glossary). The consensus values in play (balances, fees,
// block rewards) can exceed a u64, so Amount is backed by math/big the same
// way the teacher's difficulty and subsidy arithmetic leans on big.Int
// rather than risking silent wraparound on fixed-width integers.
//
// Amount is a value type: every mutating method returns a new Amount and
// leaves its receiver untouched.
type Amount struct {
	v *big.Int
}

// Zero is the additive identity.
var Zero = Amount{v: big.NewInt(0)}

// NewAmountFromUint64 builds an Amount from a u64.
func NewAmountFromUint64(v uint64) Amount {
	return Amount{v: new(big.Int).SetUint64(v)}
}

// NewAmountFromBigInt builds an Amount from a big.Int, panicking if it is
// negative — balances are a consensus invariant, never a runtime input to
// sanitize (spec §4.2: "no account ever has negative balance").
func NewAmountFromBigInt(v *big.Int) Amount {
	if v.Sign() < 0 {
		panic("types: negative amount")
	}
	return Amount{v: new(big.Int).Set(v)}
}

// NewAmountFromBigIntBytes decodes a big-endian unsigned byte string into
// an Amount, as used by the canonical transaction codec.
func NewAmountFromBigIntBytes(b []byte) Amount {
	return Amount{v: new(big.Int).SetBytes(b)}
}

func (a Amount) bigOrZero() *big.Int {
	if a.v == nil {
		return big.NewInt(0)
	}
	return a.v
}

// Add returns a+b.
func (a Amount) Add(b Amount) Amount {
	return Amount{v: new(big.Int).Add(a.bigOrZero(), b.bigOrZero())}
}

// Sub returns a-b. It does not clamp — callers that must reject negative
// results (e.g. debit) should check Cmp first, as Execution does.
func (a Amount) Sub(b Amount) Amount {
	return Amount{v: new(big.Int).Sub(a.bigOrZero(), b.bigOrZero())}
}

// MulUint64 returns a*n.
func (a Amount) MulUint64(n uint64) Amount {
	return Amount{v: new(big.Int).Mul(a.bigOrZero(), new(big.Int).SetUint64(n))}
}

// Cmp compares a to b: -1, 0, or 1.
func (a Amount) Cmp(b Amount) int {
	return a.bigOrZero().Cmp(b.bigOrZero())
}

// Sign returns -1, 0, or 1 depending on a's sign.
func (a Amount) Sign() int {
	return a.bigOrZero().Sign()
}

// IsZero reports whether a is exactly zero.
func (a Amount) IsZero() bool {
	return a.bigOrZero().Sign() == 0
}

// Bytes returns the big-endian, minimal-length unsigned encoding.
func (a Amount) Bytes() []byte {
	return a.bigOrZero().Bytes()
}

// BytesU256BE returns the value as a fixed 32-byte big-endian buffer,
// suitable for feeding the state-root hash (spec §4.2).
func (a Amount) BytesU256BE() [32]byte {
	var out [32]byte
	b := a.bigOrZero().Bytes()
	if len(b) > 32 {
		panic("types: amount exceeds 256 bits")
	}
	copy(out[32-len(b):], b)
	return out
}

// String renders the decimal representation.
func (a Amount) String() string {
	return a.bigOrZero().String()
}

// BigInt returns a defensive copy of the underlying big.Int.
func (a Amount) BigInt() *big.Int {
	return new(big.Int).Set(a.bigOrZero())
}
