// Package txcodec implements the canonical transaction encoding (spec §6):
// a sorted-key canonical CBOR map with byte-reproducible output. Two
// implementations given the same transaction MUST produce identical bytes,
// so the encoder marshals a struct whose cbor tags fix the field names
// through a canonical (sorted-key, minimal-integer) CBOR encoding mode: the
// output key order comes from the canonical sort, not from Go field
// declaration order.
package txcodec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/animicaorg/animica-node/internal/types"
)

// Field names, fixed by spec §6. Map keys are sorted lexicographically by
// the canonical encoder, so this list is documentation, not configuration.
const (
	keyAccessList = "accessList"
	keyChainID    = "chainId"
	keyData       = "data"
	keyFrom       = "from"
	keyGasLimit   = "gasLimit"
	keyGasPrice   = "gasPrice"
	keyNonce      = "nonce"
	keySig        = "sig"
	keyTo         = "to"
	keyValue      = "value"
)

var canonicalMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("txcodec: building canonical CBOR encoder: %v", err))
	}
	canonicalMode = m
}

// wireTx is the canonical on-wire shape. Byte fields are raw byte strings;
// `to` is omitted (encodes as CBOR null) for a deploy transaction.
type wireTx struct {
	AccessList []byte `cbor:"accessList"`
	ChainID    uint64 `cbor:"chainId"`
	Data       []byte `cbor:"data"`
	From       []byte `cbor:"from"`
	GasLimit   uint64 `cbor:"gasLimit"`
	GasPrice   uint64 `cbor:"gasPrice"`
	Nonce      uint64 `cbor:"nonce"`
	Sig        []byte `cbor:"sig"`
	To         []byte `cbor:"to"`
	Value      []byte `cbor:"value"`
}

// EncodeTx renders tx as canonical CBOR: a map with the ten keys above,
// sorted lexicographically, integer-minimal encoding, addresses as raw
// 20-byte strings, and `to: null` for a deploy.
func EncodeTx(tx *types.Transaction) ([]byte, error) {
	w := wireTx{
		AccessList: []byte{}, // access lists are not modeled by the core; always empty.
		ChainID:    tx.ChainID,
		Data:       orEmpty(tx.Data),
		From:       tx.Sender[:],
		GasLimit:   tx.GasLimit,
		GasPrice:   tx.GasPrice,
		Nonce:      tx.Nonce,
		Sig:        orEmpty(tx.Signature),
		Value:      tx.Value.Bytes(),
	}
	if tx.To != nil {
		w.To = tx.To[:]
	}
	return canonicalMode.Marshal(w)
}

// DecodeTx parses canonical CBOR produced by EncodeTx back into a
// Transaction. decode(encode(x)) == x for every transaction EncodeTx can
// produce.
func DecodeTx(b []byte) (*types.Transaction, error) {
	var w wireTx
	if err := cbor.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("txcodec: decode: %w", err)
	}
	tx := &types.Transaction{
		ChainID:   w.ChainID,
		Data:      w.Data,
		GasLimit:  w.GasLimit,
		GasPrice:  w.GasPrice,
		Nonce:     w.Nonce,
		Signature: w.Sig,
	}
	if len(w.From) != 20 {
		return nil, fmt.Errorf("txcodec: from must be 20 bytes, got %d", len(w.From))
	}
	copy(tx.Sender[:], w.From)

	if w.To != nil {
		if len(w.To) != 20 {
			return nil, fmt.Errorf("txcodec: to must be 20 bytes, got %d", len(w.To))
		}
		var to types.Address
		copy(to[:], w.To)
		tx.To = &to
	}

	tx.Value = types.NewAmountFromBigIntBytes(w.Value)
	return tx, nil
}

func orEmpty(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
