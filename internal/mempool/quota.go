package mempool

import (
	"sync"

	"github.com/animicaorg/animica-node/internal/types"
)

// QuotaTracker bounds how many pending transactions and how many bytes of
// pending transaction data a single sender may occupy in the pool at once
// (spec §4.5.4/§4.5.1 gate 5). An id is never double-counted, and releasing
// an id the tracker never saw is a no-op — mirroring the job-queue quota
// tracker's release() contract.
type QuotaTracker struct {
	mu sync.Mutex

	maxPending     int
	maxPendingSize uint64

	pending map[types.Address]map[idhashKey]struct{}
	size    map[types.Address]uint64
}

type idhashKey [32]byte

// NewQuotaTracker builds a tracker enforcing maxPending transactions and
// maxPendingSize bytes per sender.
func NewQuotaTracker(maxPending int, maxPendingSize uint64) *QuotaTracker {
	return &QuotaTracker{
		maxPending:     maxPending,
		maxPendingSize: maxPendingSize,
		pending:        make(map[types.Address]map[idhashKey]struct{}),
		size:           make(map[types.Address]uint64),
	}
}

// Allows reports whether sender has room for one more pending transaction of
// sizeBytes without reserving it.
func (q *QuotaTracker) Allows(sender types.Address, sizeBytes uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	count := len(q.pending[sender])
	if q.maxPending > 0 && count >= q.maxPending {
		return false
	}
	if q.maxPendingSize > 0 && q.size[sender]+sizeBytes > q.maxPendingSize {
		return false
	}
	return true
}

// Reserve records txHash as pending for sender, accounting sizeBytes toward
// its quota. Reserving the same txHash twice is a no-op.
func (q *QuotaTracker) Reserve(sender types.Address, txHash [32]byte, sizeBytes uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	set, ok := q.pending[sender]
	if !ok {
		set = make(map[idhashKey]struct{})
		q.pending[sender] = set
	}
	key := idhashKey(txHash)
	if _, already := set[key]; already {
		return
	}
	set[key] = struct{}{}
	q.size[sender] += sizeBytes
}

// Release frees a previously reserved txHash. Releasing an id that was
// never reserved, or whose sender has nothing pending, is a no-op.
func (q *QuotaTracker) Release(sender types.Address, txHash [32]byte, sizeBytes uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	set, ok := q.pending[sender]
	if !ok {
		return
	}
	key := idhashKey(txHash)
	if _, present := set[key]; !present {
		return
	}
	delete(set, key)
	if q.size[sender] >= sizeBytes {
		q.size[sender] -= sizeBytes
	} else {
		q.size[sender] = 0
	}
	if len(set) == 0 {
		delete(q.pending, sender)
		delete(q.size, sender)
	}
}
