package execution

import (
	"testing"

	"github.com/animicaorg/animica-node/internal/issuance"
	"github.com/animicaorg/animica-node/internal/state"
	"github.com/animicaorg/animica-node/internal/types"
)

func testIssuance() issuance.Params {
	return issuance.Params{
		Start:       types.NewAmountFromUint64(1000),
		EpochLen:    1_000_000,
		DecayPct:    10,
		Tail:        types.NewAmountFromUint64(1),
		MaxHalvings: 64,
	}
}

func addr(b byte) types.Address {
	var a types.Address
	a[19] = b
	return a
}

func TestApplyBlockTransferPreservesSupply(t *testing.T) {
	st := state.New()
	alice, bob, coinbase := addr(1), addr(2), addr(3)
	st.Credit(alice, types.NewAmountFromUint64(1000))

	before := totalSupply(st, alice, bob, coinbase)

	to := bob
	block := &types.Block{
		Height:   1,
		Coinbase: coinbase,
		Txs: []*types.Transaction{
			{Sender: alice, To: &to, Value: types.NewAmountFromUint64(100), GasLimit: 10, GasPrice: 2, Nonce: 0, ChainID: 1},
		},
	}

	res, err := ApplyBlock(st, block, testIssuance())
	if err != nil {
		t.Fatalf("ApplyBlock: %v", err)
	}
	if len(res.Receipts) != 1 || res.Receipts[0].Status != types.StatusSuccess {
		t.Fatalf("expected one successful receipt, got %+v", res.Receipts)
	}

	after := totalSupply(st, alice, bob, coinbase)
	want := before.Add(res.Minted)
	if after.Cmp(want) != 0 {
		t.Fatalf("supply invariant violated: after=%s want=%s", after, want)
	}
	if st.Get(bob).Balance.Cmp(types.NewAmountFromUint64(100)) != 0 {
		t.Fatalf("bob balance wrong: %s", st.Get(bob).Balance)
	}
	if st.Get(alice).Nonce != 1 {
		t.Fatalf("alice nonce should be 1, got %d", st.Get(alice).Nonce)
	}
}

func TestApplyBlockSkipsUnderfundedTxWithoutMutatingState(t *testing.T) {
	st := state.New()
	alice, bob, coinbase := addr(1), addr(2), addr(3)
	st.Credit(alice, types.NewAmountFromUint64(5))

	block := &types.Block{
		Height:   1,
		Coinbase: coinbase,
		Txs: []*types.Transaction{
			{Sender: alice, To: &bob, Value: types.NewAmountFromUint64(100), GasLimit: 10, GasPrice: 2, Nonce: 0, ChainID: 1},
		},
	}

	res, err := ApplyBlock(st, block, testIssuance())
	if err != nil {
		t.Fatalf("ApplyBlock should not fail the whole block: %v", err)
	}
	if len(res.Receipts) != 0 {
		t.Fatalf("underfunded tx should not produce a receipt")
	}
	if st.Get(alice).Nonce != 0 {
		t.Fatalf("underfunded tx must not bump nonce")
	}
	if st.Get(alice).Balance.Cmp(types.NewAmountFromUint64(5)) != 0 {
		t.Fatalf("underfunded tx must not mutate sender balance")
	}
}

func TestApplyBlockRejectsDuplicateNonce(t *testing.T) {
	st := state.New()
	alice, bob, coinbase := addr(1), addr(2), addr(3)
	st.Credit(alice, types.NewAmountFromUint64(1000))
	before := st.Root()

	block := &types.Block{
		Height:   1,
		Coinbase: coinbase,
		Txs: []*types.Transaction{
			{Sender: alice, To: &bob, Value: types.NewAmountFromUint64(10), GasLimit: 1, GasPrice: 1, Nonce: 0},
			{Sender: alice, To: &bob, Value: types.NewAmountFromUint64(10), GasLimit: 1, GasPrice: 1, Nonce: 0},
		},
	}

	_, err := ApplyBlock(st, block, testIssuance())
	if err == nil {
		t.Fatalf("expected DuplicateNonce block-level error")
	}
	if st.Root() != before {
		t.Fatalf("failed block must roll back to the pre-block snapshot")
	}
}

func TestApplyBlockMintsReward(t *testing.T) {
	st := state.New()
	coinbase := addr(9)
	block := &types.Block{Height: 0, Coinbase: coinbase}
	res, err := ApplyBlock(st, block, testIssuance())
	if err != nil {
		t.Fatalf("ApplyBlock: %v", err)
	}
	if st.Get(coinbase).Balance.Cmp(res.Minted) != 0 {
		t.Fatalf("coinbase balance should equal minted reward")
	}
}

func totalSupply(st *state.State, addrs ...types.Address) types.Amount {
	total := types.Zero
	for _, a := range addrs {
		total = total.Add(st.Get(a).Balance)
	}
	return total
}
