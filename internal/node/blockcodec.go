package node

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/animicaorg/animica-node/internal/idhash"
	"github.com/animicaorg/animica-node/internal/txcodec"
	"github.com/animicaorg/animica-node/internal/types"
)

// headerBytes concatenates every block field except the hash itself, in
// the fixed order height||parent||coinbase||timestamp||state_root||
// receipts_root||acceptance_scalar_be||proof_set_digest||pow_draw_be,
// mirroring internal/state.State.Root's manual big-endian field
// concatenation rather than pulling in a second serialization convention
// just for the header.
func headerBytes(b *types.Block) []byte {
	buf := make([]byte, 0, 20+32+20+8+32+32+8+32+8)
	buf = appendU64BE(buf, b.Height)
	buf = append(buf, b.ParentHash[:]...)
	buf = append(buf, b.Coinbase[:]...)
	buf = appendU64BE(buf, b.Timestamp)
	buf = append(buf, b.StateRoot[:]...)
	buf = append(buf, b.ReceiptsRoot[:]...)
	buf = appendI64BE(buf, b.AcceptanceScalarMicro)
	buf = append(buf, b.ProofSetDigest[:]...)
	buf = appendI64BE(buf, b.PowDrawMicro)
	return buf
}

// blockHash computes a block's id from its header bytes (spec §6: block
// hash excludes the hash field itself).
func blockHash(b *types.Block) idhash.Digest {
	return idhash.BlockHash(headerBytes(b))
}

func appendU64BE(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendI64BE(buf []byte, v int64) []byte {
	return appendU64BE(buf, uint64(v))
}

// wireBlock is the on-disk shape stored by Store.PutBlock: the header
// fields plus each transaction's own canonical encoding, so a restarted
// node can replay a block without re-deriving anything from the live
// mempool.
type wireBlock struct {
	Height                uint64   `cbor:"height"`
	ParentHash            []byte   `cbor:"parentHash"`
	Coinbase              []byte   `cbor:"coinbase"`
	Timestamp             uint64   `cbor:"timestamp"`
	StateRoot             []byte   `cbor:"stateRoot"`
	ReceiptsRoot          []byte   `cbor:"receiptsRoot"`
	AcceptanceScalarMicro int64    `cbor:"acceptanceScalarMicro"`
	ProofSetDigest        []byte   `cbor:"proofSetDigest"`
	PowDrawMicro          int64    `cbor:"powDrawMicro"`
	Txs                   [][]byte `cbor:"txs"`
}

// encodeBlock serializes b for storage. Encoding need not be canonical:
// unlike tx hashing, a stored block is never re-hashed from these bytes,
// only decoded back into a *types.Block.
func encodeBlock(b *types.Block) ([]byte, error) {
	w := wireBlock{
		Height:                b.Height,
		ParentHash:            b.ParentHash[:],
		Coinbase:              b.Coinbase[:],
		Timestamp:             b.Timestamp,
		StateRoot:             b.StateRoot[:],
		ReceiptsRoot:          b.ReceiptsRoot[:],
		AcceptanceScalarMicro: b.AcceptanceScalarMicro,
		ProofSetDigest:        b.ProofSetDigest[:],
		PowDrawMicro:          b.PowDrawMicro,
	}
	for _, tx := range b.Txs {
		enc, err := txcodec.EncodeTx(tx)
		if err != nil {
			return nil, fmt.Errorf("node: encode block tx: %w", err)
		}
		w.Txs = append(w.Txs, enc)
	}
	return cbor.Marshal(w)
}

// decodeBlock reverses encodeBlock.
func decodeBlock(b []byte) (*types.Block, error) {
	var w wireBlock
	if err := cbor.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("node: decode block: %w", err)
	}
	blk := &types.Block{
		Height:                w.Height,
		Timestamp:             w.Timestamp,
		AcceptanceScalarMicro: w.AcceptanceScalarMicro,
		PowDrawMicro:          w.PowDrawMicro,
	}
	copy(blk.ParentHash[:], w.ParentHash)
	copy(blk.Coinbase[:], w.Coinbase)
	copy(blk.StateRoot[:], w.StateRoot)
	copy(blk.ReceiptsRoot[:], w.ReceiptsRoot)
	copy(blk.ProofSetDigest[:], w.ProofSetDigest)
	for _, enc := range w.Txs {
		tx, err := txcodec.DecodeTx(enc)
		if err != nil {
			return nil, fmt.Errorf("node: decode block tx: %w", err)
		}
		blk.Txs = append(blk.Txs, tx)
	}
	return blk, nil
}
