// Package chaincfg defines per-network chain configuration (spec §3, §9
// "injected at node startup"): the chain id, genesis block, and every
// subsystem's tunables bundled so a node process can select one network
// and wire everything else off it. Shaped directly on the teacher's own
// chaincfg package (mainnetparams.go/testnetparams.go/simnetparams.go/
// regnetparams.go, one exported `*Params()` factory per network), but the
// fields themselves are generalized from a UTXO/PoW chain's parameters
// (pow limit, subsidy halving interval, block-one premine ledger) to this
// node's account-based, multi-subsystem parameter set.
package chaincfg

import (
	"github.com/animicaorg/animica-node/internal/da"
	"github.com/animicaorg/animica-node/internal/idhash"
	"github.com/animicaorg/animica-node/internal/issuance"
	"github.com/animicaorg/animica-node/internal/mempool"
	"github.com/animicaorg/animica-node/internal/proofselector"
	"github.com/animicaorg/animica-node/internal/slashing"
	"github.com/animicaorg/animica-node/internal/state"
	"github.com/animicaorg/animica-node/internal/types"
)

// GenesisAccount is one block-zero balance allocation, the account-based
// equivalent of the teacher's block-one premine ledger
// (chaincfg/premine.go's BlockOneLedgerMainNet).
type GenesisAccount struct {
	Address types.Address
	Balance types.Amount
}

// Params bundles every per-network constant and subsystem configuration
// the core needs at startup.
type Params struct {
	Name    string
	ChainID uint64

	GenesisTimestamp uint64
	GenesisAccounts  []GenesisAccount

	Issuance      issuance.Params
	MempoolConfig mempool.Config
	Watermark     mempool.WatermarkConfig
	ProofSelector proofselector.Policy
	Slashing      slashing.Params
	DAParams      da.ChunkParams

	// JobQueueMaxConcurrent bounds how many AICF jobs one provider may
	// lease at once (internal/jobqueue.NewQueue).
	JobQueueMaxConcurrent int

	// MaxPendingPerSender and MaxPendingSizePerSenderBytes parameterize
	// internal/mempool.NewQuotaTracker.
	MaxPendingPerSender          int
	MaxPendingSizePerSenderBytes uint64

	// MaxTxPerBlock caps how many pending transactions a mined block
	// drains from the mempool in one go.
	MaxTxPerBlock int

	// ThetaMicro is the fixed acceptance-scalar target a block must meet
	// (spec §4.7, §3's "fractional Θ retargeting"). The pack's retrieved
	// sources only name retargeting in a docstring
	// (original_source/consensus/__init__.py: "fractional retargeting of
	// Θ") with no retained algorithm to ground an implementation on, so
	// this network carries a fixed Θ instead of inventing a retargeting
	// curve; see DESIGN.md.
	ThetaMicro int64

	// LowFeeBanSeconds is spec §4.5.3's low_fee_ban_s: the duration a
	// sender is banned for on a non-local FeeTooLow admission failure.
	// Repeated offenses extend the ban monotonically (internal/mempool's
	// BanList.Ban), never shorten it.
	LowFeeBanSeconds int64
}

// GenesisStateRoot derives the deterministic state root committed to by
// block zero, by crediting every genesis allocation into a fresh State and
// reusing its own Root derivation — so block zero is not a special case
// that computes the root differently from every later block.
func (p *Params) GenesisStateRoot() idhash.Digest {
	s := state.New()
	for _, g := range p.GenesisAccounts {
		s.Credit(g.Address, g.Balance)
	}
	return s.Root()
}

// MainNetParams returns Animica's production network parameters.
func MainNetParams() *Params {
	return &Params{
		Name:             "mainnet",
		ChainID:          1,
		GenesisTimestamp: 1700000000,
		Issuance: issuance.Params{
			Start:       types.NewAmountFromUint64(50_000_000_000), // 50 native units (50e9 nano-native)/block
			EpochLen:    210_000,
			DecayPct:    10,
			Tail:        types.NewAmountFromUint64(100_000_000),
			MaxHalvings: 64,
		},
		MempoolConfig: mempool.Config{
			MaxTxSizeBytes:           128 * 1024,
			AcceptBelowFloorForLocal: true,
		},
		Watermark: mempool.DefaultWatermarkConfig(),
		ProofSelector: proofselector.Policy{
			Weights: map[types.ProofType]float64{
				types.ProofHash:    1.0,
				types.ProofAI:      1.5,
				types.ProofQuantum: 2.0,
				types.ProofStorage: 1.0,
				types.ProofVDF:     1.25,
			},
			PerTypeCaps: map[types.ProofType]int{
				types.ProofAI:      4,
				types.ProofQuantum: 2,
			},
			GammaCap: 16.0,
			EscortQ:  0.2,
			Limit:    32,
		},
		Slashing: slashing.Params{
			TrapsMin:            0.95,
			QosMin:              0.90,
			JailAfterViolations: 3,
			CooldownBlocks:      2_880, // roughly one day at a 30s block time
			PenaltyPerViolation: types.NewAmountFromUint64(1_000_000_000),
		},
		DAParams:                     da.ChunkParams{ChunkSize: 32 * 1024, DataShards: 8, ParityShards: 4},
		JobQueueMaxConcurrent:        4,
		MaxPendingPerSender:          64,
		MaxPendingSizePerSenderBytes: 4 * 1024 * 1024,
		MaxTxPerBlock:                4096,
		ThetaMicro:                   3_000_000,
		LowFeeBanSeconds:             300,
	}
}

// TestNetParams returns the long-lived public test network's parameters:
// same shape and admission settings as mainnet, with faster issuance decay
// so test chains progress through interesting states quickly.
func TestNetParams() *Params {
	p := MainNetParams()
	p.Name = "testnet"
	p.ChainID = 2
	p.Issuance.EpochLen = 2_000
	p.MempoolConfig.AcceptBelowFloorForLocal = true
	return p
}

// SimNetParams returns parameters for a private, operator-controlled
// simulation network (fast issuance decay, minimal cooldowns) — the
// account-model analogue of the teacher's SimNetParams used for local
// integration testing.
func SimNetParams() *Params {
	p := MainNetParams()
	p.Name = "simnet"
	p.ChainID = 3
	p.Issuance.EpochLen = 128
	p.Slashing.CooldownBlocks = 8
	p.JobQueueMaxConcurrent = 1
	return p
}

// RegNetParams returns parameters for regression testing: deterministic,
// minimal genesis, no premine, smallest possible windows everywhere.
func RegNetParams() *Params {
	p := MainNetParams()
	p.Name = "regtest"
	p.ChainID = 1337
	p.GenesisTimestamp = 0
	p.GenesisAccounts = nil
	p.Issuance.EpochLen = 16
	p.Slashing.JailAfterViolations = 1
	p.Slashing.CooldownBlocks = 1
	p.ProofSelector.Limit = 8
	p.LowFeeBanSeconds = 10 // matches the spec's worked low-fee-ban scenario
	return p
}
