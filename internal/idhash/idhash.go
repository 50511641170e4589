// Package idhash derives domain-separated SHA3-256 digests for the
// transaction, block, and job identifiers used across the node.
//
// Every multi-field id is built the same way: an ASCII domain tag, a NUL
// separator, then the field concatenation. Fixed-width integers are encoded
// big-endian; variable-length fields are u32-big-endian length prefixed so
// two different field splits can never hash to the same bytes.
package idhash

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Digest is a raw 32-byte SHA3-256 output.
type Digest [32]byte

// IsZero reports whether d is the all-zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Hex renders the digest as a lowercase "0x"-prefixed hex string.
func (d Digest) Hex() string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 2+len(d)*2)
	out[0], out[1] = '0', 'x'
	for i, b := range d {
		out[2+i*2] = hextable[b>>4]
		out[2+i*2+1] = hextable[b&0x0f]
	}
	return string(out)
}

func (d Digest) String() string { return d.Hex() }

// Domain tags. New domains must be added here, never inlined at call sites,
// so every derivation in the node is auditable in one place.
const (
	DomainJobID        = "animica/task-id/v1"
	DomainTxHash       = "animica/tx-hash/v1"
	DomainBlockID      = "animica/block-id/v1"
	DomainStateRoot    = "animica/state-root/v1"
	DomainBeaconCommit = "animica/rand-commit/v1"
	DomainBeaconMix    = "animica/rand-mix/v1"
)

// builder accumulates domain-separated, length-prefixed fields.
type builder struct {
	buf []byte
}

func newBuilder(domain string) *builder {
	b := &builder{buf: make([]byte, 0, 128)}
	b.buf = append(b.buf, domain...)
	b.buf = append(b.buf, 0x00)
	return b
}

func (b *builder) u64(v uint64) *builder {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

func (b *builder) raw(v []byte) *builder {
	b.buf = append(b.buf, v...)
	return b
}

// lenPrefixed appends a u32-big-endian length prefix followed by v.
func (b *builder) lenPrefixed(v []byte) *builder {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(v)))
	b.buf = append(b.buf, tmp[:]...)
	b.buf = append(b.buf, v...)
	return b
}

func (b *builder) sum() Digest {
	return Digest(sha3.Sum256(b.buf))
}

// JobID computes the deterministic AICF job identifier described in spec
// §3: SHA3-256(domain || u64_be(chain_id) || u64_be(height) ||
// len-prefixed(tx_hash) || len-prefixed(caller) || len-prefixed(payload)).
//
// chainID and height must be non-negative; callers pass them as uint64, so
// the only failure mode is a mistyped input, which is an invariant
// violation rather than a recoverable error.
func JobID(chainID, height uint64, txHash, caller, payload []byte) Digest {
	return newBuilder(DomainJobID).
		u64(chainID).
		u64(height).
		lenPrefixed(txHash).
		lenPrefixed(caller).
		lenPrefixed(payload).
		sum()
}

// TxHash computes the domain-separated hash of canonical transaction bytes
// (the output of txcodec.EncodeTx).
func TxHash(canonicalTxBytes []byte) Digest {
	return newBuilder(DomainTxHash).lenPrefixed(canonicalTxBytes).sum()
}

// BlockHash computes SHA3-256 over the domain tag and the canonical header
// bytes (all block header fields except the hash itself, per spec §6).
func BlockHash(canonicalHeaderBytes []byte) Digest {
	return newBuilder(DomainBlockID).lenPrefixed(canonicalHeaderBytes).sum()
}

// BeaconCommitment computes a randomness-beacon commitment
// C = H(domain || len-prefixed(participant) || len-prefixed(salt) ||
// len-prefixed(payload)), per the commit half of the beacon's
// commit-reveal round.
func BeaconCommitment(participant, salt, payload []byte) Digest {
	return newBuilder(DomainBeaconCommit).
		lenPrefixed(participant).
		lenPrefixed(salt).
		lenPrefixed(payload).
		sum()
}

// BeaconMix folds a round's revealed (participant, salt, payload) triples,
// already ordered deterministically by the caller, into the round's final
// beacon output.
func BeaconMix(participants, salts, payloads [][]byte) Digest {
	b := newBuilder(DomainBeaconMix)
	for i := range participants {
		b.lenPrefixed(participants[i]).lenPrefixed(salts[i]).lenPrefixed(payloads[i])
	}
	return b.sum()
}

// Sum256 is the bare, non-domain-separated SHA3-256 primitive, exposed for
// callers (such as the state and receipts roots) that hash their own field
// concatenation directly, with no domain tag, rather than through builder.
func Sum256(b []byte) Digest {
	return Digest(sha3.Sum256(b))
}

// ParseHex decodes a "0x"-prefixed or bare 64-character hex digest.
func ParseHex(s string) (Digest, error) {
	var d Digest
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s) != 64 {
		return d, fmt.Errorf("idhash: expected 64 hex chars, got %d", len(s))
	}
	for i := 0; i < 32; i++ {
		hi, ok1 := hexNibble(s[i*2])
		lo, ok2 := hexNibble(s[i*2+1])
		if !ok1 || !ok2 {
			return d, fmt.Errorf("idhash: invalid hex digit at offset %d", i*2)
		}
		d[i] = hi<<4 | lo
	}
	return d, nil
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
