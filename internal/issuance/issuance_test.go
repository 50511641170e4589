package issuance

import (
	"testing"

	"github.com/animicaorg/animica-node/internal/types"
)

func testParams() Params {
	return Params{
		Start:       types.NewAmountFromUint64(50_000_000_000),
		EpochLen:    1000,
		DecayPct:    10, // each epoch keeps 90%
		Tail:        types.NewAmountFromUint64(1_000_000),
		MaxHalvings: 64,
	}
}

func TestMonotoneNonIncreasing(t *testing.T) {
	p := testParams()
	prev := ForBlock(0, p)
	for h := uint64(1000); h <= 50_000; h += 1000 {
		cur := ForBlock(h, p)
		if cur.Cmp(prev) > 0 {
			t.Fatalf("issuance increased at height %d: %s > %s", h, cur, prev)
		}
		prev = cur
	}
}

func TestNeverBelowTail(t *testing.T) {
	p := testParams()
	for _, h := range []uint64{0, 1000, 1_000_000, 100_000_000} {
		got := ForBlock(h, p)
		if got.Cmp(p.Tail) < 0 {
			t.Fatalf("height %d: %s below tail %s", h, got, p.Tail)
		}
	}
}

func TestCapsAtMaxHalvings(t *testing.T) {
	p := testParams()
	atCap := ForBlock(p.MaxHalvings*p.EpochLen, p)
	wayPast := ForBlock((p.MaxHalvings+50)*p.EpochLen, p)
	if atCap.Cmp(wayPast) != 0 {
		t.Fatalf("reward should stop decaying past max halvings: %s != %s", atCap, wayPast)
	}
}

func TestDeterministicAcrossRepeatedCalls(t *testing.T) {
	p := testParams()
	a := ForBlock(12345, p)
	b := ForBlock(12345, p)
	if a.Cmp(b) != 0 {
		t.Fatalf("issuance not deterministic")
	}
}

func TestZeroDecayNeverDecreases(t *testing.T) {
	p := testParams()
	p.DecayPct = 0
	first := ForBlock(0, p)
	later := ForBlock(1_000_000, p)
	if first.Cmp(later) != 0 {
		t.Fatalf("zero decay should hold reward constant: %s != %s", first, later)
	}
}
