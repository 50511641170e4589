package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/animicaorg/animica-node/internal/chaincfg"
	"github.com/animicaorg/animica-node/internal/node"
	"github.com/animicaorg/animica-node/internal/rpcglue"
	"github.com/animicaorg/animica-node/internal/store"
	"github.com/animicaorg/animica-node/internal/types"
)

// exit codes, per spec §6: "0 success; 1 generic error; 2 invalid
// arguments; 3 IO/storage error."
const (
	exitOK          = 0
	exitGenericErr  = 1
	exitInvalidArgs = 2
	exitIOErr       = 3
)

// openNode opens the persisted store and rehydrates/bootstraps a node.Node
// for the active chain, the shared setup every subcommand below needs.
func openNode(cfg *config, params *chaincfg.Params) (*node.Node, *store.Store, error) {
	st, err := store.Open(cfg.dbPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	n, err := node.New(params, st, rand.New(rand.NewSource(1)), rpcglue.NopPublisher{})
	if err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("init node: %w", err)
	}
	return n, st, nil
}

// statusView is the JSON/text shape of `animicad status`.
type statusView struct {
	ChainID  uint64 `json:"chainId"`
	Height   uint64 `json:"height"`
	HeadHash string `json:"headHash"`
	Syncing  bool   `json:"syncing"` // always false: there is no P2P sync in this binary's scope.
}

func cmdStatus(cfg *config, params *chaincfg.Params, asJSON bool) int {
	n, st, err := openNode(cfg, params)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIOErr
	}
	defer st.Close()

	hash, height := n.Head()
	view := statusView{ChainID: params.ChainID, Height: height, HeadHash: hash.Hex(), Syncing: false}
	printView(view, asJSON, func() {
		fmt.Printf("height=%d head=%s chainId=%d syncing=%v\n", view.Height, view.HeadHash, view.ChainID, view.Syncing)
	})
	return exitOK
}

// cmdMine advances the chain by count blocks (devnet convenience), printing
// the new height on success.
func cmdMine(cfg *config, params *chaincfg.Params, count int) int {
	if count <= 0 {
		fmt.Fprintln(os.Stderr, "mine: --count must be a positive integer")
		return exitInvalidArgs
	}
	n, st, err := openNode(cfg, params)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIOErr
	}
	defer st.Close()

	coinbase := minerCoinbase(params)
	for i := 0; i < count; i++ {
		if _, err := n.MineBlock(coinbase, nil, uint64(time.Now().Unix())); err != nil {
			fmt.Fprintln(os.Stderr, "mine:", err)
			return exitGenericErr
		}
	}

	_, height := n.Head()
	fmt.Println(height)
	return exitOK
}

// blockView is the JSON/text shape of `animicad block N`.
type blockView struct {
	Height       uint64 `json:"height"`
	ParentHash   string `json:"parentHash"`
	Coinbase     string `json:"coinbase"`
	Timestamp    uint64 `json:"timestamp"`
	TxCount      int    `json:"txCount"`
	StateRoot    string `json:"stateRoot"`
	ReceiptsRoot string `json:"receiptsRoot"`
}

func cmdBlock(cfg *config, params *chaincfg.Params, height uint64, asJSON bool) int {
	n, st, err := openNode(cfg, params)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIOErr
	}
	defer st.Close()

	blk, ok, err := n.BlockAtHeight(height)
	if err != nil {
		fmt.Fprintln(os.Stderr, "block:", err)
		return exitIOErr
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "block: no block at height %d\n", height)
		return exitGenericErr
	}

	view := blockView{
		Height:       blk.Height,
		ParentHash:   blk.ParentHash.Hex(),
		Coinbase:     blk.Coinbase.Hex(),
		Timestamp:    blk.Timestamp,
		TxCount:      len(blk.Txs),
		StateRoot:    blk.StateRoot.Hex(),
		ReceiptsRoot: blk.ReceiptsRoot.Hex(),
	}
	printView(view, asJSON, func() {
		fmt.Printf("height=%d parent=%s coinbase=%s txs=%d stateRoot=%s receiptsRoot=%s\n",
			view.Height, view.ParentHash, view.Coinbase, view.TxCount, view.StateRoot, view.ReceiptsRoot)
	})
	return exitOK
}

// pipelineView is the JSON/text shape of `animicad pipeline --mine K`.
type pipelineView struct {
	EndHeight uint64 `json:"endHeight"`
	HeadHash  string `json:"headHash"`
}

func cmdPipeline(cfg *config, params *chaincfg.Params, mineCount int, asJSON bool) int {
	if mineCount <= 0 {
		fmt.Fprintln(os.Stderr, "pipeline: --mine must be a positive integer")
		return exitInvalidArgs
	}
	n, st, err := openNode(cfg, params)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIOErr
	}
	defer st.Close()

	coinbase := minerCoinbase(params)
	for i := 0; i < mineCount; i++ {
		if _, err := n.MineBlock(coinbase, nil, uint64(time.Now().Unix())); err != nil {
			fmt.Fprintln(os.Stderr, "pipeline:", err)
			return exitGenericErr
		}
	}

	hash, height := n.Head()
	view := pipelineView{EndHeight: height, HeadHash: hash.Hex()}
	printView(view, asJSON, func() {
		fmt.Printf("endHeight=%d headHash=%s\n", view.EndHeight, view.HeadHash)
	})
	return exitOK
}

// cmdAuto persists the auto-mining toggle and prints "on"/"off" (spec §6).
func cmdAuto(cfg *config, desired bool) int {
	st, err := store.Open(cfg.dbPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, "auto:", err)
		return exitIOErr
	}
	defer st.Close()

	if err := st.SetAutoMine(desired); err != nil {
		fmt.Fprintln(os.Stderr, "auto:", err)
		return exitIOErr
	}

	if desired {
		fmt.Println("on")
	} else {
		fmt.Println("off")
	}
	return exitOK
}

// minerCoinbase picks a deterministic devnet coinbase: the first genesis
// allocation if one exists, otherwise the zero address. A production miner
// would take this from an operator-supplied flag; that surface is outside
// the CLI commands spec §6 names.
func minerCoinbase(params *chaincfg.Params) types.Address {
	if len(params.GenesisAccounts) > 0 {
		return params.GenesisAccounts[0].Address
	}
	return types.Address{}
}

// printView prints view as JSON when asJSON is set, otherwise runs the
// supplied plain-text formatter.
func printView(view any, asJSON bool, plain func()) {
	if !asJSON {
		plain()
		return
	}
	enc, err := json.Marshal(view)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode json:", err)
		return
	}
	fmt.Println(string(enc))
}
