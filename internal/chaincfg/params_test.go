package chaincfg

import (
	"testing"

	"github.com/animicaorg/animica-node/internal/types"
)

func TestNetworksHaveDistinctChainIDs(t *testing.T) {
	seen := map[uint64]string{}
	for _, p := range []*Params{MainNetParams(), TestNetParams(), SimNetParams(), RegNetParams()} {
		if other, ok := seen[p.ChainID]; ok {
			t.Fatalf("chain id %d reused by both %q and %q", p.ChainID, other, p.Name)
		}
		seen[p.ChainID] = p.Name
	}
}

func TestMainNetParamsAreInternallyConsistent(t *testing.T) {
	p := MainNetParams()
	if p.Issuance.EpochLen == 0 {
		t.Fatalf("epoch_len must be positive")
	}
	if p.MempoolConfig.MaxTxSizeBytes == 0 {
		t.Fatalf("max tx size must be positive")
	}
	if p.ProofSelector.Limit <= 0 {
		t.Fatalf("proof selector limit must be positive")
	}
	if p.Slashing.JailAfterViolations == 0 {
		t.Fatalf("jail threshold must be positive")
	}
	if p.DAParams.DataShards <= 0 {
		t.Fatalf("da data shards must be positive")
	}
}

func TestGenesisStateRootIsDeterministicAndOrderIndependent(t *testing.T) {
	p1 := MainNetParams()
	p1.GenesisAccounts = []GenesisAccount{
		{Address: types.Address{1}, Balance: types.NewAmountFromUint64(10)},
		{Address: types.Address{2}, Balance: types.NewAmountFromUint64(20)},
	}
	p2 := MainNetParams()
	p2.GenesisAccounts = []GenesisAccount{
		{Address: types.Address{2}, Balance: types.NewAmountFromUint64(20)},
		{Address: types.Address{1}, Balance: types.NewAmountFromUint64(10)},
	}

	if p1.GenesisStateRoot() != p2.GenesisStateRoot() {
		t.Fatalf("genesis state root must not depend on allocation order")
	}
}

func TestRegNetHasSmallestWindows(t *testing.T) {
	p := RegNetParams()
	if p.Slashing.CooldownBlocks != 1 {
		t.Fatalf("regnet cooldown should be minimal, got %d", p.Slashing.CooldownBlocks)
	}
	if len(p.GenesisAccounts) != 0 {
		t.Fatalf("regnet should carry no premine by default")
	}
}
