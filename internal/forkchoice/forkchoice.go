// Package forkchoice implements the deterministic, weight-first tip
// selection of spec §4.9: lexicographic order over (total acceptance
// scalar, height, tie-break hash), with a smaller hash winning ties so
// grinding for a favorable hash buys nothing once the scalar and height
// already match.
package forkchoice

import (
	"bytes"

	"github.com/animicaorg/animica-node/internal/idhash"
)

// Candidate is one chain tip under consideration.
type Candidate struct {
	TotalSMicro int64
	Height      uint64
	Hash        idhash.Digest
}

// CompareWeight orders a and b per spec §4.9. It returns a positive number
// if a wins, negative if b wins, zero only if a and b are identical tips.
func CompareWeight(a, b Candidate) int {
	if a.TotalSMicro != b.TotalSMicro {
		if a.TotalSMicro > b.TotalSMicro {
			return 1
		}
		return -1
	}
	if a.Height != b.Height {
		if a.Height > b.Height {
			return 1
		}
		return -1
	}
	// Lexicographically smaller hash wins: invert bytes.Compare's sign.
	return -bytes.Compare(a.Hash[:], b.Hash[:])
}

// ForkChoice returns the maximum of tips under CompareWeight. It panics on
// an empty slice — callers always have at least their own current tip.
func ForkChoice(tips []Candidate) Candidate {
	if len(tips) == 0 {
		panic("forkchoice: no candidate tips")
	}
	best := tips[0]
	for _, c := range tips[1:] {
		if CompareWeight(c, best) > 0 {
			best = c
		}
	}
	return best
}
