// Package execution applies a block's transactions to state deterministically
// (spec §4.4): debit value+fee from the sender, credit the recipient and
// coinbase, bump the sender's nonce, and record a receipt — then mint the
// block reward. A per-tx checkpoint makes each transaction's failure
// revert in isolation; a per-block checkpoint makes the whole block revert
// on a block-level fault.
package execution

import (
	"github.com/animicaorg/animica-node/internal/idhash"
	"github.com/animicaorg/animica-node/internal/issuance"
	"github.com/animicaorg/animica-node/internal/state"
	"github.com/animicaorg/animica-node/internal/txcodec"
	"github.com/animicaorg/animica-node/internal/types"
	"github.com/animicaorg/animica-node/internal/vmerr"
)

// Result is the outcome of applying one block.
type Result struct {
	Receipts []types.Receipt
	Minted   types.Amount
}

// ApplyBlock applies block.Txs to st in order, then mints the block reward
// to block.Coinbase. On a block-level fault (duplicate sender nonce within
// the block) the whole block is rolled back and an error is returned; the
// caller must not advance its head in that case.
//
// A transaction that fails at the execution-time balance check (which a
// conforming block builder should have already filtered out, per spec
// §4.4/§9) is skipped: its state mutation is reverted and it produces no
// receipt, rather than failing the whole block.
func ApplyBlock(st *state.State, block *types.Block, issuanceParams issuance.Params) (*Result, error) {
	blockCP := st.Checkpoint()

	seenNonce := make(map[nonceKey]bool, len(block.Txs))
	receipts := make([]types.Receipt, 0, len(block.Txs))

	for _, tx := range block.Txs {
		key := nonceKey{tx.Sender, tx.Nonce}
		if seenNonce[key] {
			st.RevertTo(blockCP)
			return nil, vmerr.New(vmerr.DuplicateNonce, "duplicate sender nonce within block",
				"sender", tx.Sender.Hex(), "nonce", tx.Nonce)
		}
		seenNonce[key] = true

		receipt, ok, err := applyTx(st, tx, block.Coinbase)
		if err != nil {
			st.RevertTo(blockCP)
			return nil, err
		}
		if ok {
			receipts = append(receipts, receipt)
		}
	}

	minted := issuance.ForBlock(block.Height, issuanceParams)
	st.Credit(block.Coinbase, minted)

	st.Commit(blockCP)
	return &Result{Receipts: receipts, Minted: minted}, nil
}

type nonceKey struct {
	sender types.Address
	nonce  uint64
}

// applyTx applies one transaction. ok=false means the transaction was
// skipped (execution-time balance failure) with all its mutations reverted;
// err is non-nil only for faults that must abort the whole block.
func applyTx(st *state.State, tx *types.Transaction, coinbase types.Address) (types.Receipt, bool, error) {
	txCP := st.Checkpoint()

	fee := tx.EffectiveFee()
	total := tx.Value.Add(fee)

	sender := st.Get(tx.Sender)
	if sender.Balance.Cmp(total) < 0 {
		st.RevertTo(txCP)
		return types.Receipt{}, false, nil
	}

	if err := st.Debit(tx.Sender, total); err != nil {
		st.RevertTo(txCP)
		return types.Receipt{}, false, nil
	}
	st.IncNonce(tx.Sender)

	if tx.To != nil {
		st.Credit(*tx.To, tx.Value)
	} else {
		// Deploy: no code execution is modeled here, so value stays with
		// the sender rather than vanishing from total supply.
		st.Credit(tx.Sender, tx.Value)
	}
	st.Credit(coinbase, fee)

	txHash, err := txHashOf(tx)
	if err != nil {
		st.RevertTo(txCP)
		return types.Receipt{}, false, nil
	}

	receipt := types.Receipt{
		TxHash:  txHash,
		Status:  types.StatusSuccess,
		GasUsed: tx.GasLimit,
		Logs:    nil,
	}

	st.Commit(txCP)
	return receipt, true, nil
}

func txHashOf(tx *types.Transaction) (idhash.Digest, error) {
	enc, err := txcodec.EncodeTx(tx)
	if err != nil {
		return idhash.Digest{}, err
	}
	return idhash.TxHash(enc), nil
}

// ReceiptsRoot folds a block's receipts into a single digest, following the
// same approach as the state root: a plain SHA3-256 over the concatenated
// fields, with no domain tag.
func ReceiptsRoot(receipts []types.Receipt) idhash.Digest {
	buf := make([]byte, 0, len(receipts)*64)
	for _, r := range receipts {
		buf = append(buf, r.TxHash[:]...)
		buf = append(buf, byte(r.Status))
		buf = appendU64BE(buf, r.GasUsed)
		for _, l := range r.Logs {
			buf = append(buf, l.Address[:]...)
			for _, topic := range l.Topics {
				buf = append(buf, topic...)
			}
			buf = append(buf, l.Data...)
		}
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
