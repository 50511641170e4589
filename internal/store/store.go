// Package store persists node state across restarts: per-address accounts,
// blocks, receipts, the canonical head pointer, and mempool bans (spec §6,
// "suggested" layout: one keyvalue store with prefixes state/, block/,
// receipt/, head, mempool/ban/). It is a single bbolt file with one bucket
// per prefix, grounded directly on the teacher's `store.DB`
// (rubin-protocol/clients/go/node/store/db.go): bucket-per-prefix, manual
// fixed-layout binary encoding for index-style records rather than a
// generic serialization library, one mutex-free transaction per call.
package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/animicaorg/animica-node/internal/idhash"
	"github.com/animicaorg/animica-node/internal/types"
)

var (
	bucketState   = []byte("state")
	bucketBlock   = []byte("block")
	bucketHeight  = []byte("block_height_index")
	bucketReceipt = []byte("receipt")
	bucketMeta    = []byte("meta")
	bucketBan     = []byte("mempool_ban")
)

var headKey = []byte("head")
var autoMineKey = []byte("auto_mine")

// Head is the canonical chain tip pointer, written as a single atomic
// record per spec §6 ("Head pointer is atomic single-record write").
type Head struct {
	Hash   idhash.Digest
	Height uint64
}

// Store is the node's persisted key-value store.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bbolt file at path and ensures every
// bucket this package uses exists.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: path required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}

	s := &Store{db: db}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketState, bucketBlock, bucketHeight, bucketReceipt, bucketMeta, bucketBan} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying bbolt file. Safe to call on a nil Store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutAccount writes an account's consensus state, keyed by address.
func (s *Store) PutAccount(addr types.Address, acc types.Account) error {
	val := encodeAccount(acc)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Put(addr[:], val)
	})
}

// GetAccount reads an account. ok is false if addr has never been written
// (the caller's convention for "default zero account" lives in
// internal/state, not here).
func (s *Store) GetAccount(addr types.Address) (types.Account, bool, error) {
	var out types.Account
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketState).Get(addr[:])
		if v == nil {
			return nil
		}
		acc, err := decodeAccount(v)
		if err != nil {
			return err
		}
		out, ok = acc, true
		return nil
	})
	return out, ok, err
}

// ForEachAccount visits every persisted account in address order, so a
// restarted node can rehydrate internal/state.State from disk.
func (s *Store) ForEachAccount(fn func(types.Address, types.Account) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).ForEach(func(k, v []byte) error {
			var addr types.Address
			copy(addr[:], k)
			acc, err := decodeAccount(v)
			if err != nil {
				return err
			}
			return fn(addr, acc)
		})
	})
}

// DeleteAccount removes an account record entirely.
func (s *Store) DeleteAccount(addr types.Address) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Delete(addr[:])
	})
}

// PutBlock stores a block's encoded bytes under its id and indexes it by
// height, so both lookups (by hash, by height) are a single key read.
func (s *Store) PutBlock(hash idhash.Digest, height uint64, encoded []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketBlock).Put(hash[:], encoded); err != nil {
			return err
		}
		return tx.Bucket(bucketHeight).Put(heightKey(height), hash[:])
	})
}

// GetBlockByHash returns a block's raw encoded bytes.
func (s *Store) GetBlockByHash(hash idhash.Digest) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlock).Get(hash[:])
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, out != nil, err
}

// GetBlockHashAtHeight resolves the canonical block id stored at height.
func (s *Store) GetBlockHashAtHeight(height uint64) (idhash.Digest, bool, error) {
	var out idhash.Digest
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHeight).Get(heightKey(height))
		if v == nil {
			return nil
		}
		copy(out[:], v)
		ok = true
		return nil
	})
	return out, ok, err
}

// PutReceipt stores a transaction's encoded receipt bytes under its tx hash.
func (s *Store) PutReceipt(txHash idhash.Digest, encoded []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketReceipt).Put(txHash[:], encoded)
	})
}

// GetReceipt returns a transaction's encoded receipt bytes.
func (s *Store) GetReceipt(txHash idhash.Digest) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketReceipt).Get(txHash[:])
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, out != nil, err
}

// SetHead atomically overwrites the canonical tip pointer.
func (s *Store) SetHead(h Head) error {
	val := encodeHead(h)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(headKey, val)
	})
}

// Head reads the canonical tip pointer. ok is false before the first
// SetHead call (an uninitialized chain).
func (s *Store) Head() (Head, bool, error) {
	var out Head
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(headKey)
		if v == nil {
			return nil
		}
		h, err := decodeHead(v)
		if err != nil {
			return err
		}
		out, ok = h, true
		return nil
	})
	return out, ok, err
}

// SetAutoMine persists the CLI's auto-mining toggle (`animicad auto`) so it
// survives across separate process invocations.
func (s *Store) SetAutoMine(on bool) error {
	v := byte(0)
	if on {
		v = 1
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(autoMineKey, []byte{v})
	})
}

// AutoMine reads the persisted auto-mining toggle. Defaults to false if
// never set.
func (s *Store) AutoMine() (bool, error) {
	var on bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(autoMineKey)
		on = len(v) == 1 && v[0] == 1
		return nil
	})
	return on, err
}

// PutBan persists a mempool ban (spec §4.5.3) so it survives a restart.
func (s *Store) PutBan(addr types.Address, banUntil int64) error {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(banUntil))
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBan).Put(addr[:], v[:])
	})
}

// GetBan reads a persisted ban expiry. ok is false if no ban record exists
// for addr; an expired ban still reads back until DeleteBan removes it.
func (s *Store) GetBan(addr types.Address) (int64, bool, error) {
	var out int64
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBan).Get(addr[:])
		if v == nil || len(v) != 8 {
			return nil
		}
		out = int64(binary.BigEndian.Uint64(v))
		ok = true
		return nil
	})
	return out, ok, err
}

// DeleteBan removes a ban record once it has expired.
func (s *Store) DeleteBan(addr types.Address) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBan).Delete(addr[:])
	})
}

func heightKey(height uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], height) // big-endian keeps height order == byte order
	return k[:]
}

// encodeAccount lays out an account as: nonce u64be | code_hash 32B |
// balance_len u16be | balance_bytes. Manual fixed layout, matching the
// teacher's own index-entry encoding, rather than a general serialization
// library for what is a small, stable-shaped record.
func encodeAccount(acc types.Account) []byte {
	bal := acc.Balance.Bytes()
	out := make([]byte, 8+32+2+len(bal))
	binary.BigEndian.PutUint64(out[0:8], acc.Nonce)
	copy(out[8:40], acc.CodeHash[:])
	binary.BigEndian.PutUint16(out[40:42], uint16(len(bal)))
	copy(out[42:], bal)
	return out
}

func decodeAccount(b []byte) (types.Account, error) {
	if len(b) < 8+32+2 {
		return types.Account{}, fmt.Errorf("store: truncated account record")
	}
	nonce := binary.BigEndian.Uint64(b[0:8])
	var codeHash idhash.Digest
	copy(codeHash[:], b[8:40])
	balLen := int(binary.BigEndian.Uint16(b[40:42]))
	if 42+balLen != len(b) {
		return types.Account{}, fmt.Errorf("store: bad account balance length")
	}
	return types.Account{
		Nonce:    nonce,
		Balance:  types.NewAmountFromBigIntBytes(b[42:]),
		CodeHash: codeHash,
	}, nil
}

func encodeHead(h Head) []byte {
	out := make([]byte, 32+8)
	copy(out[0:32], h.Hash[:])
	binary.BigEndian.PutUint64(out[32:40], h.Height)
	return out
}

func decodeHead(b []byte) (Head, error) {
	if len(b) != 32+8 {
		return Head{}, fmt.Errorf("store: truncated head record")
	}
	var h Head
	copy(h.Hash[:], b[0:32])
	h.Height = binary.BigEndian.Uint64(b[32:40])
	return h, nil
}
