package mempool

import (
	"testing"

	"github.com/animicaorg/animica-node/internal/idhash"
	"github.com/animicaorg/animica-node/internal/types"
	"github.com/animicaorg/animica-node/internal/vmerr"
)

func mkTx(sender byte, fee uint64) *types.Transaction {
	var s types.Address
	s[19] = sender
	return &types.Transaction{Sender: s, GasLimit: fee, GasPrice: 1, ChainID: 7}
}

func TestCheckAdmitOversizeShortCircuits(t *testing.T) {
	cfg := Config{MaxTxSizeBytes: 100}
	pool := Pool{Capacity: 10}
	tx := mkTx(1, 1000)

	err := CheckAdmit(cfg, pool, tx, types.Meta{SizeBytes: 101}, false)
	if !vmerr.As(err, vmerr.Oversize) {
		t.Fatalf("expected oversize error, got %v", err)
	}
}

func TestCheckAdmitWrongChainId(t *testing.T) {
	want := uint64(1)
	cfg := Config{MaxTxSizeBytes: 1000, AllowChainID: &want}
	pool := Pool{Capacity: 10}
	tx := mkTx(1, 1000)
	tx.ChainID = 2

	err := CheckAdmit(cfg, pool, tx, types.Meta{}, false)
	if !vmerr.As(err, vmerr.WrongChainId) {
		t.Fatalf("expected wrong chain id error, got %v", err)
	}
}

func TestCheckAdmitMissingChainIdIsAllowedThroughGate(t *testing.T) {
	want := uint64(1)
	cfg := Config{MaxTxSizeBytes: 1000, AllowChainID: &want}
	pool := Pool{Capacity: 10}
	tx := mkTx(1, 1000)
	tx.ChainID = 0

	err := CheckAdmit(cfg, pool, tx, types.Meta{}, false)
	if vmerr.As(err, vmerr.WrongChainId) {
		t.Fatalf("a missing chain id must not fail the chain id gate")
	}
}

func TestCheckAdmitBannedSenderRejectedUnlessLocal(t *testing.T) {
	now := int64(0)
	bans := NewBanList(func() int64 { return now })
	tx := mkTx(1, 1000)
	bans.Ban(tx.Sender, 100)

	cfg := Config{MaxTxSizeBytes: 1000}
	pool := Pool{Bans: bans, Capacity: 10}

	if err := CheckAdmit(cfg, pool, tx, types.Meta{}, false); !vmerr.As(err, vmerr.Banned) {
		t.Fatalf("expected banned error, got %v", err)
	}
	if err := CheckAdmit(cfg, pool, tx, types.Meta{}, true); vmerr.As(err, vmerr.Banned) {
		t.Fatalf("a local transaction must bypass the ban gate")
	}
}

func TestCheckAdmitFeeTooLowAndLocalBypass(t *testing.T) {
	wm := NewFeeWatermark(WatermarkConfig{MinFloorWei: 100, MaxStepUp: 2, MaxStepDown: 0.5})
	cfg := Config{MaxTxSizeBytes: 1000, AcceptBelowFloorForLocal: true}
	pool := Pool{Watermark: wm, Capacity: 10}
	tx := mkTx(1, 5) // fee = gasLimit*gasPrice = 5

	if err := CheckAdmit(cfg, pool, tx, types.Meta{}, false); !vmerr.As(err, vmerr.FeeTooLow) {
		t.Fatalf("expected fee too low error, got %v", err)
	}
	if err := CheckAdmit(cfg, pool, tx, types.Meta{}, true); vmerr.As(err, vmerr.FeeTooLow) {
		t.Fatalf("a local transaction configured to bypass the floor must be admitted")
	}
}

func TestCheckAdmitQuotaExceeded(t *testing.T) {
	q := NewQuotaTracker(1, 0)
	cfg := Config{MaxTxSizeBytes: 1000}
	pool := Pool{Quotas: q, Capacity: 10}
	tx := mkTx(1, 1000)

	q.Reserve(tx.Sender, idhash.Sum256([]byte("first")), 0)
	if err := CheckAdmit(cfg, pool, tx, types.Meta{}, false); !vmerr.As(err, vmerr.QuotaExceeded) {
		t.Fatalf("expected quota exceeded error, got %v", err)
	}
}

