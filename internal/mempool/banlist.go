package mempool

import (
	"sync"

	"github.com/animicaorg/animica-node/internal/types"
)

// Clock returns the current logical second. The node wires its block height
// as this clock; tests inject a fake clock so ban expiry is verifiable
// without sleeping (spec §4.5.3).
type Clock func() int64

// BanList tracks per-sender ban expiries. A single RWMutex protects it,
// mirroring the embedded-lock style of the teacher's SigCache: reads don't
// block each other, writes are serialized.
type BanList struct {
	mu    sync.RWMutex
	until map[types.Address]int64
	now   Clock
}

// NewBanList creates an empty ban list using now as its logical clock.
func NewBanList(now Clock) *BanList {
	return &BanList{until: make(map[types.Address]int64), now: now}
}

// IsBanned reports whether sender is currently banned.
func (b *BanList) IsBanned(sender types.Address) bool {
	b.mu.RLock()
	until, ok := b.until[sender]
	b.mu.RUnlock()
	return ok && b.now() < until
}

// Ban extends sender's ban by durationSec seconds from now, monotonically:
// ban_until = max(ban_until, now + duration) (spec §4.5.3). Repeated
// offenses only ever push the expiry later, never earlier.
func (b *BanList) Ban(sender types.Address, durationSec int64) {
	candidate := b.now() + durationSec
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.until[sender]; !ok || candidate > cur {
		b.until[sender] = candidate
	}
}

// UntilFor returns the current ban expiry for sender and whether one exists
// at all (distinct from IsBanned, which also checks it hasn't lapsed).
func (b *BanList) UntilFor(sender types.Address) (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	until, ok := b.until[sender]
	return until, ok
}
