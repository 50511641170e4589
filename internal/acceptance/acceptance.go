// Package acceptance computes the PoIES block-acceptance scalar
// S = H(u) + Σψ (spec §4.7) and compares it against the difficulty
// threshold Θ in fixed-point micro-units, so that the accept/reject
// decision never depends on floating-point evaluation order.
package acceptance

import (
	"math"
	"math/big"

	"github.com/animicaorg/animica-node/internal/proofselector"
)

// U derives the uniform draw u ∈ (0,1) from a big-endian proof-of-work
// digest: N = big-endian integer of digest (clamped to at least 1), then
// u = clamp(N / 2^n, 2·2^-n, 1 - 2^-n), with n the digest's bit length.
func U(digest []byte) float64 {
	n := len(digest) * 8
	N := new(big.Int).SetBytes(digest)
	if N.Sign() == 0 {
		N.SetInt64(1)
	}

	// n+64 bits of precision keeps the final float64 conversion faithfully
	// rounded regardless of how large n is.
	num := new(big.Float).SetPrec(uint(n) + 64).SetInt(N)
	denom := new(big.Float).SetPrec(uint(n) + 64).SetMantExp(big.NewFloat(1), n)
	quotient := new(big.Float).Quo(num, denom)
	u, _ := quotient.Float64()

	lo := 2 * math.Ldexp(1, -n)
	hi := 1 - math.Ldexp(1, -n)
	if hi >= 1 {
		// 1 - 2^-n rounds to 1 in float64 once n > 53; use the largest
		// float64 below 1 so u stays strictly inside (0,1).
		hi = math.Nextafter(1, 0)
	}
	return clamp(u, lo, hi)
}

// H is the acceptance scalar's proof-of-work term, H(u) = -ln(u): monotone
// decreasing in u and non-negative for u ∈ (0,1].
//
// math.Log is a pure Go implementation (no libm call), so its result is
// bit-identical across platforms — the property this computation actually
// needs, rather than a hand-rolled minimax polynomial.
func H(u float64) float64 {
	return -math.Log(u)
}

// Scalar computes S = H(u) + Σψ for a proof-of-work digest and the
// total weighted score of the proofs kept by the proof selector.
func Scalar(digest []byte, totalPsi float64) float64 {
	return H(U(digest)) + totalPsi
}

// Micro converts a scalar value to fixed-point micro-units (value × 1e6,
// rounded), the representation all consensus-critical S/Θ comparisons use.
func Micro(v float64) int64 {
	return proofselector.RoundMicro(v)
}

// Accepts reports whether a block's S passes its difficulty threshold Θ,
// both expressed in micro-units. Equality accepts (spec §4.7: "equality
// accepts").
func Accepts(sMicro, thetaMicro int64) bool {
	return sMicro >= thetaMicro
}

// ShareThresholdMicro computes the sub-share threshold pool mining uses:
// T_share = floor(Θ_micro × share_ratio).
func ShareThresholdMicro(thetaMicro int64, shareRatio float64) int64 {
	return int64(math.Floor(float64(thetaMicro) * shareRatio))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
