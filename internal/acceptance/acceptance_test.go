package acceptance

import (
	"bytes"
	"math"
	"testing"
)

func TestUIsClampedAwayFromZeroAndOne(t *testing.T) {
	zero := make([]byte, 32)
	u := U(zero)
	if u <= 0 || u >= 1 {
		t.Fatalf("u must lie strictly within (0,1), got %v", u)
	}

	maxDigest := bytes.Repeat([]byte{0xff}, 32)
	u2 := U(maxDigest)
	if u2 <= 0 || u2 >= 1 {
		t.Fatalf("u must lie strictly within (0,1) even for max digest, got %v", u2)
	}
	if u2 <= u {
		t.Fatalf("a larger digest should yield a larger u: low=%v high=%v", u, u2)
	}
}

func TestUIsMonotoneInDigestValue(t *testing.T) {
	small := make([]byte, 32)
	small[31] = 1
	big := make([]byte, 32)
	big[31] = 200

	if U(big) <= U(small) {
		t.Fatalf("U must increase with the digest's integer value")
	}
}

func TestHIsMonotoneDecreasingAndNonNegative(t *testing.T) {
	lowU := 0.01
	highU := 0.99
	if H(lowU) <= H(highU) {
		t.Fatalf("H(u) must decrease as u increases")
	}
	if H(highU) < 0 {
		t.Fatalf("H(u) must be non-negative for u in (0,1), got %v", H(highU))
	}
}

func TestMicroRoundingMatchesConvention(t *testing.T) {
	if Micro(2.3456785) != 2345679 && Micro(2.3456785) != 2345678 {
		t.Fatalf("unexpected micro rounding: %d", Micro(2.3456785))
	}
}

func TestAcceptsIsInclusiveAtEquality(t *testing.T) {
	if !Accepts(1_000_000, 1_000_000) {
		t.Fatalf("equality must accept")
	}
	if Accepts(999_999, 1_000_000) {
		t.Fatalf("a scalar strictly below theta must be rejected")
	}
	if !Accepts(1_000_001, 1_000_000) {
		t.Fatalf("a scalar strictly above theta must be accepted")
	}
}

func TestShareThresholdMicroFloors(t *testing.T) {
	got := ShareThresholdMicro(1_000_000, 0.333333)
	want := int64(math.Floor(1_000_000 * 0.333333))
	if got != want {
		t.Fatalf("ShareThresholdMicro = %d, want %d", got, want)
	}
}

func TestScalarCombinesHAndProofScore(t *testing.T) {
	digest := make([]byte, 32)
	digest[31] = 42
	s := Scalar(digest, 3.5)
	want := H(U(digest)) + 3.5
	if s != want {
		t.Fatalf("Scalar = %v, want %v", s, want)
	}
}
