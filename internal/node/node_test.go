package node

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/animicaorg/animica-node/internal/chaincfg"
	"github.com/animicaorg/animica-node/internal/store"
	"github.com/animicaorg/animica-node/internal/types"
)

func newTestNode(t *testing.T, params *chaincfg.Params) (*Node, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	n, err := New(params, st, rand.New(rand.NewSource(42)), nil)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return n, st
}

func regnetWithGenesis(alloc types.Address, bal uint64) *chaincfg.Params {
	p := chaincfg.RegNetParams()
	p.GenesisAccounts = []chaincfg.GenesisAccount{{Address: alloc, Balance: types.NewAmountFromUint64(bal)}}
	p.ThetaMicro = -1_000_000_000 // trivially low so the first digest always accepts
	return p
}

func TestNewBootstrapsGenesisHeadAtZero(t *testing.T) {
	n, _ := newTestNode(t, regnetWithGenesis(types.Address{1}, 1000))
	hash, height := n.Head()
	if height != 0 {
		t.Fatalf("expected genesis height 0, got %d", height)
	}
	if hash.IsZero() {
		t.Fatalf("expected a non-zero genesis hash")
	}
}

func TestRestartRehydratesStateFromStore(t *testing.T) {
	params := regnetWithGenesis(types.Address{2}, 500)
	dbPath := filepath.Join(t.TempDir(), "kv.db")

	st1, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	n1, err := New(params, st1, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	head1, height1 := n1.Head()
	st1.Close()

	st2, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	n2, err := New(params, st2, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("new node on restart: %v", err)
	}
	head2, height2 := n2.Head()

	if head1 != head2 || height1 != height2 {
		t.Fatalf("restart should rehydrate the same head: (%v,%d) vs (%v,%d)", head1, height1, head2, height2)
	}
}

func TestSubmitTxAdmitsAndTracksPending(t *testing.T) {
	sender := types.Address{3}
	n, _ := newTestNode(t, regnetWithGenesis(sender, 1_000_000))

	tx := &types.Transaction{Sender: sender, Value: types.NewAmountFromUint64(10), GasLimit: 1, GasPrice: 1, Nonce: 0}
	if err := n.SubmitTx(tx, true); err != nil {
		t.Fatalf("submit tx: %v", err)
	}
	if got := n.PendingCount(); got != 1 {
		t.Fatalf("expected 1 pending tx, got %d", got)
	}
}

func TestSubmitTxRejectsOversizeTransaction(t *testing.T) {
	sender := types.Address{4}
	params := regnetWithGenesis(sender, 1_000_000)
	params.MempoolConfig.MaxTxSizeBytes = 10
	n, _ := newTestNode(t, params)

	tx := &types.Transaction{Sender: sender, Data: make([]byte, 1024), GasLimit: 1, GasPrice: 1}
	if err := n.SubmitTx(tx, false); err == nil {
		t.Fatalf("expected oversize rejection")
	}
}

func TestMineBlockAppliesPendingTxAndAdvancesHead(t *testing.T) {
	sender := types.Address{5}
	coinbase := types.Address{6}
	n, _ := newTestNode(t, regnetWithGenesis(sender, 1_000_000))

	tx := &types.Transaction{Sender: sender, Value: types.NewAmountFromUint64(100), GasLimit: 1, GasPrice: 1, Nonce: 0}
	if err := n.SubmitTx(tx, true); err != nil {
		t.Fatalf("submit tx: %v", err)
	}

	block, err := n.MineBlock(coinbase, nil, 1700000100)
	if err != nil {
		t.Fatalf("mine block: %v", err)
	}
	if block.Height != 1 {
		t.Fatalf("expected block height 1, got %d", block.Height)
	}

	_, height := n.Head()
	if height != 1 {
		t.Fatalf("expected head height 1 after mining, got %d", height)
	}
	if n.PendingCount() != 0 {
		t.Fatalf("expected mined tx to be drained from the pool")
	}
}

func TestSubmitTxBansSenderOnLowFeeAndPersists(t *testing.T) {
	sender := types.Address{8}
	params := regnetWithGenesis(sender, 1_000_000)
	params.LowFeeBanSeconds = 10
	n, st := newTestNode(t, params)

	lowFee := &types.Transaction{Sender: sender, GasLimit: 1, GasPrice: 0, Nonce: 0}
	if err := n.SubmitTx(lowFee, false); err == nil {
		t.Fatalf("expected a below-floor fee to be rejected")
	}
	if !n.Bans.IsBanned(sender) {
		t.Fatalf("sender should be banned after a non-local low-fee rejection")
	}

	if _, ok, err := st.GetBan(sender); err != nil || !ok {
		t.Fatalf("expected ban to be persisted to the store, ok=%v err=%v", ok, err)
	}

	// A retry while still banned is rejected by the ban gate itself, even
	// with a fee that would otherwise clear the admission floor.
	okFee := &types.Transaction{Sender: sender, GasLimit: 1, GasPrice: 1_000_000, Nonce: 0}
	if err := n.SubmitTx(okFee, false); err == nil {
		t.Fatalf("expected banned sender to be rejected regardless of fee")
	}
}

func TestMineBlockReturnsErrorWhenThresholdUnreachable(t *testing.T) {
	n, _ := newTestNode(t, chaincfg.RegNetParams())
	n.Params.ThetaMicro = 1 << 40 // unreachable within the attempt cap

	if _, err := n.MineBlock(types.Address{7}, nil, 1); err == nil {
		t.Fatalf("expected mining to fail against an unreachable threshold")
	}
}
