// Package state implements the deterministic account store (spec §4.2):
// balances, nonces, and code hashes, mutated through a nested journal so
// per-transaction and per-block checkpoints can be reverted in O(changes)
// rather than by snapshotting the whole account map.
//
// State is exclusively owned by the executor between begin/end of a block
// (spec §5); it is not safe for concurrent mutation from multiple
// goroutines, matching the single-threaded execution model.
package state

import (
	"sort"

	"github.com/animicaorg/animica-node/internal/idhash"
	"github.com/animicaorg/animica-node/internal/types"
	"github.com/animicaorg/animica-node/internal/vmerr"
)

// Handle identifies a checkpoint created by State.Checkpoint. Handles are
// only valid against the State that issued them and must be consumed
// (reverted or committed) in LIFO order — nested checkpoints stack.
type Handle int

// undoEntry records the pre-mutation value of one account so it can be
// restored by RevertTo. existed distinguishes "account was absent" (revert
// deletes it) from "account existed with zero fields".
type undoEntry struct {
	addr    types.Address
	prev    types.Account
	existed bool
}

// layer is one checkpoint's journal: the undo entries recorded since it was
// opened, plus a set so each address is only recorded once per layer (the
// first mutation in a layer captures the pre-layer value; later mutations
// in the same layer must not overwrite that baseline).
type layer struct {
	entries []undoEntry
	seen    map[types.Address]bool
}

func newLayer() *layer {
	return &layer{seen: make(map[types.Address]bool)}
}

// State is the account store.
type State struct {
	accounts map[types.Address]*types.Account
	layers   []*layer
}

// New returns an empty state with no accounts and no open checkpoints.
func New() *State {
	return &State{accounts: make(map[types.Address]*types.Account)}
}

// Get returns a copy of the account at addr, or the zero Account if it has
// never been touched. Reading never creates the account (§4.2: accounts are
// created implicitly only on first credit).
func (s *State) Get(addr types.Address) types.Account {
	if acc, ok := s.accounts[addr]; ok {
		return *acc
	}
	return types.Account{}
}

// recordBefore captures addr's pre-mutation value into the current open
// layer, if any, the first time addr is touched within that layer.
func (s *State) recordBefore(addr types.Address) {
	if len(s.layers) == 0 {
		return
	}
	top := s.layers[len(s.layers)-1]
	if top.seen[addr] {
		return
	}
	top.seen[addr] = true
	acc, existed := s.accounts[addr]
	entry := undoEntry{addr: addr, existed: existed}
	if existed {
		entry.prev = *acc
	}
	top.entries = append(top.entries, entry)
}

func (s *State) mutable(addr types.Address) *types.Account {
	s.recordBefore(addr)
	acc, ok := s.accounts[addr]
	if !ok {
		acc = &types.Account{}
		s.accounts[addr] = acc
	}
	return acc
}

// Credit adds amt to addr's balance, creating the account if needed.
func (s *State) Credit(addr types.Address, amt types.Amount) {
	acc := s.mutable(addr)
	acc.Balance = acc.Balance.Add(amt)
}

// Debit subtracts amt from addr's balance, failing with InsufficientBalance
// rather than letting the balance go negative (§4.2 invariant).
func (s *State) Debit(addr types.Address, amt types.Amount) error {
	cur := s.Get(addr)
	if cur.Balance.Cmp(amt) < 0 {
		return vmerr.New(vmerr.InsufficientBalance, "debit exceeds balance",
			"address", addr.Hex(), "balance", cur.Balance.String(), "amount", amt.String())
	}
	acc := s.mutable(addr)
	acc.Balance = acc.Balance.Sub(amt)
	return nil
}

// IncNonce increments addr's nonce, creating the account if needed.
func (s *State) IncNonce(addr types.Address) {
	acc := s.mutable(addr)
	acc.Nonce++
}

// SetCodeHash sets addr's code hash (used by deploy transactions).
func (s *State) SetCodeHash(addr types.Address, codeHash idhash.Digest) {
	acc := s.mutable(addr)
	acc.CodeHash = codeHash
}

// Checkpoint opens a new journal layer and returns its handle.
func (s *State) Checkpoint() Handle {
	s.layers = append(s.layers, newLayer())
	return Handle(len(s.layers) - 1)
}

// RevertTo restores state to exactly what it was when Checkpoint returned
// h, discarding every mutation recorded since, including any nested
// checkpoints opened and not yet resolved on top of h.
func (s *State) RevertTo(h Handle) {
	idx := int(h)
	if idx < 0 || idx >= len(s.layers) {
		return
	}
	// Unwind layers from the top down to and including idx.
	for i := len(s.layers) - 1; i >= idx; i-- {
		l := s.layers[i]
		for j := len(l.entries) - 1; j >= 0; j-- {
			e := l.entries[j]
			if e.existed {
				acc := e.prev
				s.accounts[e.addr] = &acc
			} else {
				delete(s.accounts, e.addr)
			}
		}
	}
	s.layers = s.layers[:idx]
}

// Commit discards the journal for h (and any nested layers above it)
// without undoing the mutations, folding responsibility for reverting them
// into the parent layer if one is still open.
func (s *State) Commit(h Handle) {
	idx := int(h)
	if idx < 0 || idx >= len(s.layers) {
		return
	}
	if idx == 0 {
		s.layers = s.layers[:0]
		return
	}
	parent := s.layers[idx-1]
	for i := idx; i < len(s.layers); i++ {
		for _, e := range s.layers[i].entries {
			if parent.seen[e.addr] {
				continue
			}
			parent.seen[e.addr] = true
			parent.entries = append(parent.entries, e)
		}
	}
	s.layers = s.layers[:idx]
}

// Root computes the deterministic state root (spec §4.2): addresses sorted
// ascending by raw bytes, each fed as address||nonce_be||balance_u256_be||
// code_hash into SHA3-256; the empty state hashes the empty input.
func (s *State) Root() idhash.Digest {
	addrs := make([]types.Address, 0, len(s.accounts))
	for a := range s.accounts {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })

	buf := make([]byte, 0, len(addrs)*(20+8+32+32))
	for _, a := range addrs {
		acc := s.accounts[a]
		buf = append(buf, a[:]...)
		buf = appendU64BE(buf, acc.Nonce)
		bal := acc.Balance.BytesU256BE()
		buf = append(buf, bal[:]...)
		buf = append(buf, acc.CodeHash[:]...)
	}
	return idhash.Sum256(buf)
}

func appendU64BE(buf []byte, v uint64) []byte {
	var tmp [8]byte
	for i := 7; i >= 0; i-- {
		tmp[i] = byte(v)
		v >>= 8
	}
	return append(buf, tmp[:]...)
}
