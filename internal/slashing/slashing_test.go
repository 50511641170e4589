package slashing

import (
	"testing"

	"github.com/animicaorg/animica-node/internal/types"
)

func testParams() Params {
	return Params{
		TrapsMin:            0.98,
		QosMin:              0.90,
		JailAfterViolations: 2,
		CooldownBlocks:      5,
		PenaltyPerViolation: types.NewAmountFromUint64(10),
	}
}

func testProvider() *types.ProviderRecord {
	return &types.ProviderRecord{ProviderID: "p1", Stake: types.NewAmountFromUint64(100)}
}

func goodStats() WindowStats { return WindowStats{Total: 200, TrapsOk: 199, QosOk: 190} }
func badStats() WindowStats  { return WindowStats{Total: 200, TrapsOk: 150, QosOk: 150} }

func TestGoodWindowWhileNotJailedIsANoOp(t *testing.T) {
	p := testProvider()
	ev := ProcessWindow(p, 10, goodStats(), testParams())
	if ev != nil {
		t.Fatalf("expected no event for a good window, got %+v", ev)
	}
	if p.Violations != 0 || p.Jailed {
		t.Fatalf("provider state should be untouched: %+v", p)
	}
}

func TestBadWindowWarnsBeforeJailThreshold(t *testing.T) {
	p := testProvider()
	ev := ProcessWindow(p, 10, badStats(), testParams())
	if ev == nil || ev.Kind != EventWarn {
		t.Fatalf("expected a warn event, got %+v", ev)
	}
	if p.Violations != 1 {
		t.Fatalf("expected 1 violation, got %d", p.Violations)
	}
	if p.Stake.Cmp(types.NewAmountFromUint64(90)) != 0 {
		t.Fatalf("expected stake debited by penalty, got %s", p.Stake)
	}
	if p.Jailed {
		t.Fatalf("provider should not be jailed after a single violation")
	}
}

func TestRepeatedBadWindowsJailAtThreshold(t *testing.T) {
	p := testProvider()
	params := testParams()

	ev1 := ProcessWindow(p, 10, badStats(), params)
	if ev1.Kind != EventWarn {
		t.Fatalf("first violation should warn, got %+v", ev1)
	}
	ev2 := ProcessWindow(p, 11, badStats(), params)
	if ev2 == nil || ev2.Kind != EventJail {
		t.Fatalf("second violation should jail, got %+v", ev2)
	}
	if !p.Jailed {
		t.Fatalf("provider should be jailed")
	}
	if p.JailUntilHeight != 11+params.CooldownBlocks {
		t.Fatalf("jail_until_height wrong: got %d", p.JailUntilHeight)
	}
}

func TestJailedProviderStaysJailedOnBadOrEarlyGoodWindow(t *testing.T) {
	p := testProvider()
	params := testParams()
	p.Jailed = true
	p.JailUntilHeight = 20
	p.Violations = 2

	// Before cooldown end: even a good window does nothing.
	ev := ProcessWindow(p, 15, goodStats(), params)
	if ev != nil {
		t.Fatalf("expected no event before cooldown elapses, got %+v", ev)
	}
	if !p.Jailed {
		t.Fatalf("provider must remain jailed before cooldown elapses")
	}

	// At cooldown end but a bad window: stays jailed, no event.
	ev2 := ProcessWindow(p, 20, badStats(), params)
	if ev2 != nil {
		t.Fatalf("expected no event for a bad window even at/after cooldown, got %+v", ev2)
	}
	if !p.Jailed {
		t.Fatalf("a bad window must not unjail")
	}
}

func TestJailedProviderUnjailsOnGoodWindowAtOrAfterCooldown(t *testing.T) {
	p := testProvider()
	params := testParams()
	p.Jailed = true
	p.JailUntilHeight = 20
	p.Violations = 2

	ev := ProcessWindow(p, 20, goodStats(), params)
	if ev == nil || ev.Kind != EventUnjail {
		t.Fatalf("expected unjail event, got %+v", ev)
	}
	if p.Jailed {
		t.Fatalf("provider should no longer be jailed")
	}
	if p.Violations != 0 {
		t.Fatalf("violations should reset on unjail, got %d", p.Violations)
	}
}

func TestStakeNeverGoesNegative(t *testing.T) {
	p := testProvider()
	p.Stake = types.NewAmountFromUint64(5)
	params := testParams() // penalty of 10 > stake of 5

	ProcessWindow(p, 1, badStats(), params)
	if p.Stake.Sign() != 0 {
		t.Fatalf("stake should clamp to zero, got %s", p.Stake)
	}
}
