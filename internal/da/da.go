// Package da models the data-availability commitment contract the core
// consumes (spec §4.10): a blob is committed as {namespace, root, params},
// and the core only ever checks a commitment's namespace and root against
// what it expects — actual erasure-coded storage and retrieval live outside
// the consensus core. ChunkBlob is a supplemented helper for producers that
// need to split a blob before committing it.
package da

import (
	"bytes"

	"github.com/animicaorg/animica-node/internal/vmerr"
)

// ChunkParams describes how a blob was laid out for erasure coding.
type ChunkParams struct {
	ChunkSize    int
	DataShards   int
	ParityShards int
}

// Commitment is the DA commitment payload of spec §4.10.
type Commitment struct {
	Namespace [8]byte
	Root      []byte
	Params    ChunkParams
}

// VerifyCommitment checks that attached matches expected on the two fields
// the core is authoritative for: namespace and root. Everything else about
// a blob's storage is the DA layer's concern, not the core's.
func VerifyCommitment(attached, expected Commitment) error {
	if attached.Namespace != expected.Namespace {
		return vmerr.New(vmerr.Revert, "da commitment namespace mismatch")
	}
	if !bytes.Equal(attached.Root, expected.Root) {
		return vmerr.New(vmerr.Revert, "da commitment root mismatch")
	}
	return nil
}

// ChunkBlob splits blob into chunks of at most chunkSize bytes, in order,
// with no empty chunks and no data loss: concatenating the result always
// reproduces blob exactly. An empty blob yields no chunks.
func ChunkBlob(blob []byte, chunkSize int) ([][]byte, error) {
	if chunkSize <= 0 {
		return nil, vmerr.New(vmerr.Revert, "chunk size must be positive", "chunk_size", chunkSize)
	}
	if len(blob) == 0 {
		return nil, nil
	}

	n := (len(blob) + chunkSize - 1) / chunkSize
	chunks := make([][]byte, 0, n)
	for offset := 0; offset < len(blob); offset += chunkSize {
		end := offset + chunkSize
		if end > len(blob) {
			end = len(blob)
		}
		chunks = append(chunks, blob[offset:end])
	}
	return chunks, nil
}

// ValidateParams sanity-checks a DA layout's shard/chunk parameters before
// a blob is committed: chunk size and data shard count must be positive (a
// layout needs at least one data shard to carry any payload at all), the
// parity shard count must not be negative, and data+parity shards must not
// exceed 255.
func ValidateParams(p ChunkParams) error {
	if p.ChunkSize <= 0 {
		return vmerr.New(vmerr.Revert, "chunk_size must be positive", "chunk_size", p.ChunkSize)
	}
	if p.DataShards <= 0 {
		return vmerr.New(vmerr.Revert, "data_shards must be positive", "data_shards", p.DataShards)
	}
	if p.ParityShards < 0 {
		return vmerr.New(vmerr.Revert, "parity_shards must not be negative", "parity_shards", p.ParityShards)
	}
	if p.DataShards+p.ParityShards > 255 {
		return vmerr.New(vmerr.Revert, "data_shards+parity_shards must not exceed 255",
			"data_shards", p.DataShards, "parity_shards", p.ParityShards)
	}
	return nil
}
