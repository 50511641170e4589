package mempool

import (
	"testing"

	"github.com/animicaorg/animica-node/internal/types"
)

func TestBanListExpiresAfterDuration(t *testing.T) {
	now := int64(1000)
	clock := func() int64 { return now }
	bl := NewBanList(clock)

	var sender types.Address
	sender[19] = 7

	if bl.IsBanned(sender) {
		t.Fatalf("sender should not start banned")
	}
	bl.Ban(sender, 60)
	if !bl.IsBanned(sender) {
		t.Fatalf("sender should be banned immediately after Ban")
	}

	now += 61
	if bl.IsBanned(sender) {
		t.Fatalf("ban should have lapsed after 61s")
	}
}

func TestBanListNeverShortensExistingBan(t *testing.T) {
	now := int64(0)
	clock := func() int64 { return now }
	bl := NewBanList(clock)

	var sender types.Address
	sender[19] = 9

	bl.Ban(sender, 100)
	first, _ := bl.UntilFor(sender)

	bl.Ban(sender, 10)
	second, _ := bl.UntilFor(sender)

	if second != first {
		t.Fatalf("a shorter ban must not shrink the existing expiry: %d -> %d", first, second)
	}

	bl.Ban(sender, 200)
	third, _ := bl.UntilFor(sender)
	if third <= first {
		t.Fatalf("a longer ban must extend the expiry: %d -> %d", first, third)
	}
}
