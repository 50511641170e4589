// Package proofselector implements the deterministic proof-selection
// algorithm used to decide which useful-work proofs a block carries (spec
// §4.6): score, stable sort, per-type caps, a total-Γ budget, and an
// escort-q fairness deferral that only engages when more than one proof
// type is present.
package proofselector

import (
	"math"
	"sort"

	"github.com/animicaorg/animica-node/internal/types"
)

// epsilon is the tolerance applied to the Γ-cap comparison so that
// floating-point rounding never rejects a candidate that exactly fills the
// budget (spec §4.6 step 3b).
const epsilon = 1e-12

// Policy parameterizes selection. Weights and PerTypeCaps may be nil/empty,
// in which case every type has weight 1.0 and no cap. GammaCap <= 0 means
// "no total cap". EscortQ <= 0 disables fairness deferral.
type Policy struct {
	Weights     map[types.ProofType]float64
	PerTypeCaps map[types.ProofType]int
	GammaCap    float64
	EscortQ     float64
	Limit       int
}

func (p Policy) weight(t types.ProofType) float64 {
	if w, ok := p.Weights[t]; ok {
		return w
	}
	return 1.0
}

func (p Policy) score(c types.ProofCandidate) float64 {
	return c.Psi * p.weight(c.Type)
}

func (p Policy) capFor(t types.ProofType) (int, bool) {
	cap, ok := p.PerTypeCaps[t]
	return cap, ok
}

// SelectProofs implements select_proofs(candidates, policy) -> chosen[].
// The result is deterministic for a given input ordering: ties in score
// preserve the candidates' relative order from candidates (a stable sort).
func SelectProofs(candidates []types.ProofCandidate, policy Policy) []types.ProofCandidate {
	limit := policy.Limit
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}

	ordered := make([]types.ProofCandidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return policy.score(ordered[i]) > policy.score(ordered[j])
	})

	typesPresent := map[types.ProofType]bool{}
	for _, c := range ordered {
		typesPresent[c.Type] = true
	}
	applyFairness := policy.EscortQ > 0 && len(typesPresent) > 1

	counts := map[types.ProofType]int{}
	var chosen []types.ProofCandidate
	gammaTotal := 0.0

	underCap := func(t types.ProofType) bool {
		cap, ok := policy.capFor(t)
		if !ok {
			return true
		}
		return counts[t] < cap
	}

	totalChosen := func() int {
		n := 0
		for _, v := range counts {
			n += v
		}
		return n
	}

	for _, c := range ordered {
		if len(chosen) >= limit {
			break
		}
		if !underCap(c.Type) {
			continue
		}
		addPsi := policy.score(c)
		if policy.GammaCap > 0 && gammaTotal+addPsi > policy.GammaCap+epsilon {
			continue
		}

		if applyFairness && totalChosen() > 0 {
			tot := totalChosen()
			frac := float64(counts[c.Type]) / float64(tot)
			if frac > policy.EscortQ && alternativeSelectable(ordered, policy, counts, gammaTotal, c.Type) {
				continue
			}
		}

		chosen = append(chosen, c)
		counts[c.Type]++
		gammaTotal += addPsi
	}

	return chosen
}

// alternativeSelectable reports whether some candidate of a different type
// than skip is still admissible under both the per-type cap and the Γ cap,
// i.e. whether deferring the current pick would not strand selection.
func alternativeSelectable(ordered []types.ProofCandidate, policy Policy, counts map[types.ProofType]int, gammaTotal float64, skip types.ProofType) bool {
	for _, other := range ordered {
		if other.Type == skip {
			continue
		}
		if cap, ok := policy.capFor(other.Type); ok && counts[other.Type] >= cap {
			continue
		}
		if policy.GammaCap > 0 && gammaTotal+policy.score(other) > policy.GammaCap+epsilon {
			continue
		}
		return true
	}
	return false
}

// TotalScore sums the score of chosen candidates — the Σψ term feeding the
// acceptance scalar (spec §4.7), after per-type weighting.
func TotalScore(chosen []types.ProofCandidate, policy Policy) float64 {
	total := 0.0
	for _, c := range chosen {
		total += policy.score(c)
	}
	return total
}

// RoundMicro converts a float value into fixed-point micro-units (value *
// 1e6, rounded), matching the u-micro convention used to eliminate
// floating-point divergence in consensus-critical comparisons (spec §4.7).
func RoundMicro(v float64) int64 {
	return int64(math.Round(v * 1_000_000))
}
