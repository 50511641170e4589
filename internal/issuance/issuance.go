// Package issuance computes the per-block coinbase reward (spec §4.3): a
// halving-style decay schedule with a tail emission floor, following the
// same shape as the teacher's subsidy parameters (BaseSubsidy, MulSubsidy,
// DivSubsidy, SubsidyReductionInterval in chaincfg/mainnetparams.go)
// generalized from dcrd's fixed ratio to the spec's configurable decay
// percentage.
package issuance

import (
	"math/big"

	"github.com/animicaorg/animica-node/internal/types"
)

// Params parameterizes the issuance schedule. DecayPct is a whole-number
// percentage (e.g. 10 means each epoch's reward is 90% of the previous
// epoch's), kept as an integer ratio (100-DecayPct)/100 rather than a
// float so every implementation rounds identically.
type Params struct {
	Start       types.Amount
	EpochLen    uint64
	DecayPct    uint64
	Tail        types.Amount
	MaxHalvings uint64
}

// ForBlock computes issuance_for_block(height) (spec §4.3):
//
//	epoch  = min(height / epoch_len, max_halvings)
//	reward = floor(start * ((100-decay_pct)/100)^epoch)
//	result = max(reward, tail)
//
// The exponentiation is done once with big.Int numerator/denominator powers
// and a single floor division at the end, rather than compounding a floor
// per epoch, so the result is a pure function of (height, Params) with no
// path-dependent rounding.
func ForBlock(height uint64, p Params) types.Amount {
	if p.EpochLen == 0 {
		panic("issuance: epoch_len must be > 0")
	}
	if p.DecayPct > 100 {
		panic("issuance: decay_pct must be <= 100")
	}
	epoch := height / p.EpochLen
	if epoch > p.MaxHalvings {
		epoch = p.MaxHalvings
	}

	num := big.NewInt(int64(100 - p.DecayPct)) // numerator: 100 - decay_pct
	den := big.NewInt(100)                     // denominator: 100

	numPow := new(big.Int).Exp(num, new(big.Int).SetUint64(epoch), nil)
	denPow := new(big.Int).Exp(den, new(big.Int).SetUint64(epoch), nil)

	reward := new(big.Int).Mul(p.Start.BigInt(), numPow)
	reward.Quo(reward, denPow) // floor division; both operands are non-negative.

	rewardAmt := types.NewAmountFromBigInt(reward)
	if rewardAmt.Cmp(p.Tail) < 0 {
		return p.Tail
	}
	return rewardAmt
}
