// Package main implements animicad, the Animica node CLI (spec §6 "CLI
// surface"): a one-shot command runner that opens the persisted store,
// rehydrates (or bootstraps) a node.Node, executes one subcommand, and
// exits — there is no long-running daemon loop here, matching the design-
// level CLI the spec names (status/mine/block/pipeline/auto).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jessevdk/go-flags"

	"github.com/animicaorg/animica-node/internal/chaincfg"
)

// config bundles every CLI/config-file flag animicad accepts, following the
// teacher's struct-tag-driven jessevdk/go-flags convention (one
// "Application Options" group, exclusive network flags) generalized from
// exccd's mainnet/testnet/simnet trio to Animica's four chaincfg networks.
type config struct {
	DataDir    string `short:"b" long:"datadir" description:"Directory to store data"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems: trace, debug, info, warn, error, critical"`
	LogDir     string `long:"logdir" description:"Directory to log output"`

	TestNet bool `long:"testnet" description:"Use the test network"`
	SimNet  bool `long:"simnet" description:"Use the simulation test network"`
	RegNet  bool `long:"regnet" description:"Use the regression test network"`
}

// defaultConfig mirrors the teacher's loadConfig default-value seeding,
// ahead of go-flags applying struct-tag defaults and CLI overrides.
func defaultConfig() config {
	return config{
		DataDir:    defaultDataDir(),
		DebugLevel: "info",
		LogDir:     defaultLogDir(),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", ".animicad", "data")
	}
	return filepath.Join(home, ".animicad", "data")
}

func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", ".animicad", "logs")
	}
	return filepath.Join(home, ".animicad", "logs")
}

// loadConfig parses CLI flags into cfg and returns the unconsumed
// positional arguments (the subcommand and its own arguments).
func loadConfig(args []string) (*config, []string, error) {
	cfg := defaultConfig()
	parser := flags.NewParser(&cfg, flags.Default&^flags.PrintErrors)
	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, nil, err
	}
	if cfg.TestNet && cfg.SimNet || cfg.TestNet && cfg.RegNet || cfg.SimNet && cfg.RegNet {
		return nil, nil, fmt.Errorf("only one of --testnet/--simnet/--regnet may be specified")
	}
	return &cfg, rest, nil
}

// chainParams resolves the active chaincfg.Params, letting ANIMICA_CHAIN_ID
// override the selected network's chain id (ANIMICA_DB_DIR, read by dbPath,
// is the other environment variable this binary consumes; ANIMICA_RPC_URL
// is left to adjacent RPC clients).
func (c *config) chainParams() *chaincfg.Params {
	var p *chaincfg.Params
	switch {
	case c.TestNet:
		p = chaincfg.TestNetParams()
	case c.SimNet:
		p = chaincfg.SimNetParams()
	case c.RegNet:
		p = chaincfg.RegNetParams()
	default:
		p = chaincfg.MainNetParams()
	}
	if raw := os.Getenv("ANIMICA_CHAIN_ID"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			p.ChainID = id
		}
	}
	return p
}

// dbPath resolves the store file location, letting ANIMICA_DB_DIR override
// the configured/default data directory (spec §6 environment section).
func (c *config) dbPath() string {
	dir := c.DataDir
	if env := os.Getenv("ANIMICA_DB_DIR"); env != "" {
		dir = env
	}
	return filepath.Join(dir, "animica.db")
}
