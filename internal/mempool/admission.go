package mempool

import (
	"github.com/animicaorg/animica-node/internal/types"
	"github.com/animicaorg/animica-node/internal/vmerr"
)

// Config bundles the tunables used by CheckAdmit, separate from the live
// FeeWatermark/BanList/QuotaTracker state (spec §4.5.1).
type Config struct {
	MaxTxSizeBytes uint64
	// AllowChainID, when non-nil, rejects any tx whose ChainID is set and
	// differs from it. A tx with ChainID == 0 (unset) is never rejected on
	// this gate — later validators may still reject it.
	AllowChainID             *uint64
	AcceptBelowFloorForLocal bool
}

// Pool is the set of live state CheckAdmit consults: the fee watermark, the
// ban list, and the per-sender quota tracker.
type Pool struct {
	Watermark *FeeWatermark
	Bans      *BanList
	Quotas    *QuotaTracker

	Size     int
	Capacity int
}

// CheckAdmit runs tx through the ordered, short-circuiting admission gates
// of spec §4.5.1. A nil return means tx may enter the pool.
func CheckAdmit(cfg Config, pool Pool, tx *types.Transaction, meta types.Meta, isLocal bool) error {
	if uint64(meta.SizeBytes) > cfg.MaxTxSizeBytes {
		return vmerr.New(vmerr.Oversize, "transaction exceeds maximum size",
			"size", meta.SizeBytes, "max", cfg.MaxTxSizeBytes)
	}

	if cfg.AllowChainID != nil && tx.ChainID != 0 && tx.ChainID != *cfg.AllowChainID {
		return vmerr.New(vmerr.WrongChainId, "transaction chain id does not match",
			"want", *cfg.AllowChainID, "got", tx.ChainID)
	}

	if !isLocal && pool.Bans != nil && pool.Bans.IsBanned(tx.Sender) {
		return vmerr.New(vmerr.Banned, "sender is currently banned", "sender", tx.Sender.Hex())
	}

	fee := tx.EffectiveFee()
	if meta.EffectiveFeeWei != nil {
		fee = *meta.EffectiveFeeWei
	}
	if !(isLocal && cfg.AcceptBelowFloorForLocal) && pool.Watermark != nil {
		floor := pool.Watermark.Thresholds(pool.Size, pool.Capacity).AdmitFloorWei
		if fee.BigInt().Uint64() < floor {
			return vmerr.New(vmerr.FeeTooLow, "effective fee below the current admission floor",
				"fee", fee.String(), "floor", floor)
		}
	}

	if pool.Quotas != nil && !pool.Quotas.Allows(tx.Sender, uint64(meta.SizeBytes)) {
		return vmerr.New(vmerr.QuotaExceeded, "sender has exceeded pending quota", "sender", tx.Sender.Hex())
	}

	return nil
}
