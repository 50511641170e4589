// Package node wires every subsystem package into one running instance:
// state, mempool, job queue, store, and the subsystems' shared parameters
// (spec §9 design notes: "lazy module-level state ... should be replaced
// by explicit construction of a Node context that owns all mutable state;
// determinism tests pass an injected seeded RNG"). Node owns the single
// mutex the whole pipeline runs under — spec §5 treats the executor and
// mempool as single-writer state, so one lock here is sufficient rather
// than one per subsystem.
package node

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/animicaorg/animica-node/internal/chaincfg"
	"github.com/animicaorg/animica-node/internal/forkchoice"
	"github.com/animicaorg/animica-node/internal/idhash"
	"github.com/animicaorg/animica-node/internal/jobqueue"
	"github.com/animicaorg/animica-node/internal/mempool"
	"github.com/animicaorg/animica-node/internal/rpcglue"
	"github.com/animicaorg/animica-node/internal/state"
	"github.com/animicaorg/animica-node/internal/store"
	"github.com/animicaorg/animica-node/internal/txcodec"
	"github.com/animicaorg/animica-node/internal/types"
	"github.com/animicaorg/animica-node/internal/vmerr"
)

// pendingTx is one admitted mempool entry plus the metadata admission
// decided on (so a later drain doesn't need to recompute it).
type pendingTx struct {
	tx   *types.Transaction
	meta types.Meta
	hash idhash.Digest
}

// Node owns every piece of mutable state a running instance needs.
type Node struct {
	Params *chaincfg.Params
	Store  *store.Store

	Watermark *mempool.FeeWatermark
	Bans      *mempool.BanList
	Quotas    *mempool.QuotaTracker
	Jobs      *jobqueue.Queue
	Pub       rpcglue.Publisher

	// RNG is the injected seeded source of randomness for the devnet
	// miner's PoW draws (spec §9: "determinism tests pass an injected
	// seeded RNG" — there is no real proof-of-work search to perform,
	// concrete cryptographic primitives being out of scope per spec §1).
	RNG *rand.Rand

	mu      sync.Mutex
	state   *state.State
	pending []pendingTx
	tips    []forkchoice.Candidate
	height  uint64
	head    idhash.Digest
}

// New builds a Node for params, persisting to (and rehydrating from) st.
// rng and pub may be nil; nil rng gets a fixed deterministic seed (devnet
// default), nil pub becomes rpcglue.NopPublisher.
func New(params *chaincfg.Params, st *store.Store, rng *rand.Rand, pub rpcglue.Publisher) (*Node, error) {
	if params == nil {
		return nil, fmt.Errorf("node: params required")
	}
	if st == nil {
		return nil, fmt.Errorf("node: store required")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if pub == nil {
		pub = rpcglue.NopPublisher{}
	}

	n := &Node{
		Params: params,
		Store:  st,
		Quotas: mempool.NewQuotaTracker(params.MaxPendingPerSender, params.MaxPendingSizePerSenderBytes),
		Jobs:   jobqueue.NewQueue(params.JobQueueMaxConcurrent),
		Pub:    pub,
		RNG:    rng,
		state:  state.New(),
	}
	n.Bans = mempool.NewBanList(func() int64 { return int64(n.height) })
	n.Watermark = mempool.NewFeeWatermark(params.Watermark)

	if err := n.bootstrap(); err != nil {
		return nil, err
	}
	return n, nil
}

// bootstrap rehydrates state from the store if a head already exists, or
// applies the network's genesis allocations and persists block zero.
func (n *Node) bootstrap() error {
	head, ok, err := n.Store.Head()
	if err != nil {
		return fmt.Errorf("node: read head: %w", err)
	}
	if ok {
		if err := n.Store.ForEachAccount(func(addr types.Address, acc types.Account) error {
			n.state.Credit(addr, acc.Balance)
			for i := uint64(0); i < acc.Nonce; i++ {
				n.state.IncNonce(addr)
			}
			if !acc.CodeHash.IsZero() {
				n.state.SetCodeHash(addr, acc.CodeHash)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("node: rehydrate state: %w", err)
		}
		n.head = head.Hash
		n.height = head.Height
		n.tips = []forkchoice.Candidate{{Height: head.Height, Hash: head.Hash}}
		return nil
	}

	for _, g := range n.Params.GenesisAccounts {
		n.state.Credit(g.Address, g.Balance)
	}
	genesisRoot := n.state.Root()
	genesis := &types.Block{
		Height:       0,
		Timestamp:    n.Params.GenesisTimestamp,
		StateRoot:    genesisRoot,
		ReceiptsRoot: idhash.Sum256(nil),
	}
	hash := blockHash(genesis)

	encoded, err := encodeBlock(genesis)
	if err != nil {
		return fmt.Errorf("node: encode genesis block: %w", err)
	}
	if err := n.Store.PutBlock(hash, 0, encoded); err != nil {
		return fmt.Errorf("node: persist genesis block: %w", err)
	}
	for _, g := range n.Params.GenesisAccounts {
		if err := n.Store.PutAccount(g.Address, types.Account{Balance: g.Balance}); err != nil {
			return fmt.Errorf("node: persist genesis account: %w", err)
		}
	}
	if err := n.Store.SetHead(store.Head{Hash: hash, Height: 0}); err != nil {
		return fmt.Errorf("node: set genesis head: %w", err)
	}

	n.head = hash
	n.height = 0
	n.tips = []forkchoice.Candidate{{Height: 0, Hash: hash}}
	return nil
}

// Head returns the current canonical tip.
func (n *Node) Head() (idhash.Digest, uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.head, n.height
}

// PendingCount reports how many transactions are waiting in the mempool.
func (n *Node) PendingCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}

// BlockAtHeight returns the block persisted at height, decoded back into
// its types.Block form, for read-only callers such as the CLI's `block N`.
func (n *Node) BlockAtHeight(height uint64) (*types.Block, bool, error) {
	hash, ok, err := n.Store.GetBlockHashAtHeight(height)
	if err != nil || !ok {
		return nil, ok, err
	}
	enc, ok, err := n.Store.GetBlockByHash(hash)
	if err != nil || !ok {
		return nil, ok, err
	}
	blk, err := decodeBlock(enc)
	if err != nil {
		return nil, false, err
	}
	return blk, true, nil
}

// SubmitTx runs tx through the admission gates (spec §4.5.1) and, if
// admitted, adds it to the pending pool and publishes a notification.
func (n *Node) SubmitTx(tx *types.Transaction, isLocal bool) error {
	enc, err := txcodec.EncodeTx(tx)
	if err != nil {
		return vmerr.New(vmerr.Revert, "cannot encode transaction", "error", err.Error())
	}
	hash := idhash.TxHash(enc)
	meta := types.Meta{SizeBytes: len(enc)}

	n.mu.Lock()
	defer n.mu.Unlock()

	cfg := n.Params.MempoolConfig
	allowChainID := n.Params.ChainID
	cfg.AllowChainID = &allowChainID

	pool := mempool.Pool{
		Watermark: n.Watermark,
		Bans:      n.Bans,
		Quotas:    n.Quotas,
		Size:      len(n.pending),
		Capacity:  n.Params.MaxTxPerBlock * 4,
	}
	if err := mempool.CheckAdmit(cfg, pool, tx, meta, isLocal); err != nil {
		if !isLocal {
			if verr, ok := err.(*vmerr.Error); ok && verr.Code == vmerr.FeeTooLow {
				n.Bans.Ban(tx.Sender, n.Params.LowFeeBanSeconds)
				if until, ok := n.Bans.UntilFor(tx.Sender); ok {
					if perr := n.Store.PutBan(tx.Sender, until); perr != nil {
						return fmt.Errorf("node: persist ban: %w", perr)
					}
				}
			}
		}
		return err
	}

	n.Quotas.Reserve(tx.Sender, hash, uint64(meta.SizeBytes))
	n.pending = append(n.pending, pendingTx{tx: tx, meta: meta, hash: hash})
	_ = n.Pub.Publish(rpcglue.Event{Kind: rpcglue.EventTxAdmitted, Payload: rpcglue.TxAdmittedPayload{TxHash: hash}})
	return nil
}

// drainPending removes up to max pending transactions for block assembly,
// ordered by effective fee descending (highest-fee-first, the simplest
// policy consistent with the watermark's fee-priority design) and releases
// their quota reservations — a transaction leaving the pool, selected or
// not, always frees its sender's slot.
func (n *Node) drainPending(max int) []*types.Transaction {
	sort.SliceStable(n.pending, func(i, j int) bool {
		return n.pending[i].tx.EffectiveFee().Cmp(n.pending[j].tx.EffectiveFee()) > 0
	})
	if max > len(n.pending) {
		max = len(n.pending)
	}
	chosen := n.pending[:max]
	rest := n.pending[max:]

	out := make([]*types.Transaction, 0, len(chosen))
	for _, p := range chosen {
		out = append(out, p.tx)
		n.Quotas.Release(p.tx.Sender, p.hash, uint64(p.meta.SizeBytes))
	}
	n.pending = append([]pendingTx(nil), rest...)
	return out
}
