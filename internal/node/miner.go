package node

import (
	"fmt"

	"github.com/animicaorg/animica-node/internal/acceptance"
	"github.com/animicaorg/animica-node/internal/execution"
	"github.com/animicaorg/animica-node/internal/forkchoice"
	"github.com/animicaorg/animica-node/internal/idhash"
	"github.com/animicaorg/animica-node/internal/proofselector"
	"github.com/animicaorg/animica-node/internal/rpcglue"
	"github.com/animicaorg/animica-node/internal/store"
	"github.com/animicaorg/animica-node/internal/types"
)

// maxMineAttempts bounds the nonce search: at the configured Θ this many
// draws succeed with overwhelming probability, and a hard cap keeps a
// misconfigured (too-high) Θ from spinning forever.
const maxMineAttempts = 1_000_000

// MineBlock assembles and tries to mine one block on top of the current
// head, drawing successive 32-byte digests (grounded on rubin-protocol's
// Miner.MineOne: increment a counter, rehash, check acceptance, repeat)
// until one clears the network's acceptance threshold or the attempt cap
// is hit.
//
// proofs is the candidate useful-work set the caller gathered for this
// height; MineBlock runs it through the proof selector itself so the
// chosen subset (and its digest) is always consistent with what gets
// committed to the block.
func (n *Node) MineBlock(coinbase types.Address, proofs []types.ProofCandidate, timestamp uint64) (*types.Block, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	chosen := proofselector.SelectProofs(proofs, n.Params.ProofSelector)
	totalPsi := proofselector.TotalScore(chosen, n.Params.ProofSelector)
	proofDigest := proofSetDigest(chosen)

	txs := n.drainPending(n.Params.MaxTxPerBlock)

	candidate := &types.Block{
		Height:         n.height + 1,
		ParentHash:     n.head,
		Coinbase:       coinbase,
		Timestamp:      timestamp,
		Txs:            txs,
		ProofSetDigest: proofDigest,
	}

	for attempt := 0; attempt < maxMineAttempts; attempt++ {
		digest := n.drawDigest(candidate, attempt)
		sMicro := acceptance.Micro(acceptance.Scalar(digest[:], totalPsi))
		if !acceptance.Accepts(sMicro, n.Params.ThetaMicro) {
			continue
		}

		candidate.AcceptanceScalarMicro = sMicro
		candidate.PowDrawMicro = acceptance.Micro(acceptance.U(digest[:]))
		return n.commitBlock(candidate)
	}

	return nil, fmt.Errorf("node: no accepting digest found within %d attempts", maxMineAttempts)
}

// drawDigest derives this attempt's proof-of-work digest from the node's
// seeded RNG folded with the candidate's header-prefix bytes and the
// attempt counter, so two nodes given the same seed and the same candidate
// block draw the same sequence of digests (spec §9: "determinism tests
// pass an injected seeded RNG").
func (n *Node) drawDigest(candidate *types.Block, attempt int) idhash.Digest {
	var salt [8]byte
	n.RNG.Read(salt[:])

	buf := make([]byte, 0, 64+8+8)
	buf = append(buf, headerBytes(candidate)...)
	buf = appendU64BE(buf, uint64(attempt))
	buf = append(buf, salt[:]...)
	return idhash.Sum256(buf)
}

// proofSetDigest hashes the chosen proof candidates in selection order, so
// the same selection always commits to the same digest.
func proofSetDigest(chosen []types.ProofCandidate) idhash.Digest {
	buf := make([]byte, 0, len(chosen)*32)
	for _, c := range chosen {
		buf = append(buf, c.Type...)
		buf = append(buf, 0x00)
		buf = append(buf, c.Meta...)
	}
	return idhash.Sum256(buf)
}

// commitBlock applies candidate to state, persists it, and advances head.
// Called with n.mu already held.
func (n *Node) commitBlock(candidate *types.Block) (*types.Block, error) {
	result, err := execution.ApplyBlock(n.state, candidate, n.Params.Issuance)
	if err != nil {
		return nil, fmt.Errorf("node: apply block: %w", err)
	}
	candidate.StateRoot = n.state.Root()
	candidate.ReceiptsRoot = execution.ReceiptsRoot(result.Receipts)

	hash := blockHash(candidate)
	encoded, err := encodeBlock(candidate)
	if err != nil {
		return nil, fmt.Errorf("node: encode block: %w", err)
	}
	if err := n.Store.PutBlock(hash, candidate.Height, encoded); err != nil {
		return nil, fmt.Errorf("node: persist block: %w", err)
	}
	for _, tx := range candidate.Txs {
		acc := n.state.Get(tx.Sender)
		if err := n.Store.PutAccount(tx.Sender, acc); err != nil {
			return nil, fmt.Errorf("node: persist sender account: %w", err)
		}
		if tx.To != nil {
			toAcc := n.state.Get(*tx.To)
			if err := n.Store.PutAccount(*tx.To, toAcc); err != nil {
				return nil, fmt.Errorf("node: persist recipient account: %w", err)
			}
		}
	}
	coinbaseAcc := n.state.Get(candidate.Coinbase)
	if err := n.Store.PutAccount(candidate.Coinbase, coinbaseAcc); err != nil {
		return nil, fmt.Errorf("node: persist coinbase account: %w", err)
	}

	parentTotal := int64(0)
	for _, t := range n.tips {
		if t.Hash == candidate.ParentHash {
			parentTotal = t.TotalSMicro
			break
		}
	}
	newTip := forkchoice.Candidate{TotalSMicro: parentTotal + candidate.AcceptanceScalarMicro, Height: candidate.Height, Hash: hash}
	best := forkchoice.ForkChoice(append(append([]forkchoice.Candidate(nil), n.tips...), newTip))

	n.tips = append(n.tips, newTip)
	if best.Hash == hash {
		if err := n.Store.SetHead(store.Head{Hash: hash, Height: candidate.Height}); err != nil {
			return nil, fmt.Errorf("node: set head: %w", err)
		}
		n.head = hash
		n.height = candidate.Height
	}

	n.Watermark.ObserveBlockInclusions(feesOf(candidate.Txs))
	_ = n.Pub.Publish(rpcglue.Event{Kind: rpcglue.EventBlockAccepted, Payload: rpcglue.BlockAcceptedPayload{Height: candidate.Height, Hash: hash}})
	return candidate, nil
}

func feesOf(txs []*types.Transaction) []uint64 {
	out := make([]uint64, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.EffectiveFee().BigInt().Uint64())
	}
	return out
}
