package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run parses global flags, dispatches to the requested subcommand, and
// returns the process exit code (spec §6: "0 success; 1 generic error;
// 2 invalid arguments; 3 IO/storage error").
func run(args []string) int {
	cfg, rest, err := loadConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInvalidArgs
	}
	if err := initLogging(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "init logging:", err)
		return exitIOErr
	}
	defer closeLogging()

	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "usage: animicad [options] <status|mine|block|pipeline|auto> [args]")
		return exitInvalidArgs
	}

	params := cfg.chainParams()
	cmd, cmdArgs := rest[0], rest[1:]

	switch cmd {
	case "status":
		asJSON, _, err := parseFlags(cmdArgs)
		if err != nil {
			fmt.Fprintln(os.Stderr, "status:", err)
			return exitInvalidArgs
		}
		return cmdStatus(cfg, params, asJSON)

	case "mine":
		asJSON, flags, err := parseFlags(cmdArgs)
		if err != nil {
			fmt.Fprintln(os.Stderr, "mine:", err)
			return exitInvalidArgs
		}
		count, err := intFlag(flags, "count")
		if err != nil {
			fmt.Fprintln(os.Stderr, "mine:", err)
			return exitInvalidArgs
		}
		_ = asJSON
		return cmdMine(cfg, params, count)

	case "block":
		asJSON, flags, err := parseFlags(cmdArgs)
		if err != nil {
			fmt.Fprintln(os.Stderr, "block:", err)
			return exitInvalidArgs
		}
		if len(flags["_positional"]) != 1 {
			fmt.Fprintln(os.Stderr, "usage: animicad block N [--json]")
			return exitInvalidArgs
		}
		height, err := strconv.ParseUint(flags["_positional"][0], 10, 64)
		if err != nil {
			fmt.Fprintln(os.Stderr, "block: invalid height:", err)
			return exitInvalidArgs
		}
		return cmdBlock(cfg, params, height, asJSON)

	case "pipeline":
		asJSON, flags, err := parseFlags(cmdArgs)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pipeline:", err)
			return exitInvalidArgs
		}
		mineCount, err := intFlag(flags, "mine")
		if err != nil {
			fmt.Fprintln(os.Stderr, "pipeline:", err)
			return exitInvalidArgs
		}
		return cmdPipeline(cfg, params, mineCount, asJSON)

	case "auto":
		if len(cmdArgs) != 1 {
			fmt.Fprintln(os.Stderr, "usage: animicad auto true|false")
			return exitInvalidArgs
		}
		switch strings.ToLower(cmdArgs[0]) {
		case "true":
			return cmdAuto(cfg, true)
		case "false":
			return cmdAuto(cfg, false)
		default:
			fmt.Fprintln(os.Stderr, "usage: animicad auto true|false")
			return exitInvalidArgs
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		return exitInvalidArgs
	}
}

// parseFlags does minimal `--name value` / `--name` / positional-argument
// splitting for the small, fixed per-subcommand flag sets above (status,
// mine, block, pipeline all take at most one `--flag value` plus an
// optional `--json`); jessevdk/go-flags already owns the global
// [Application Options] group in config.go, so subcommands don't need a
// second heavyweight parser layered underneath it.
func parseFlags(args []string) (asJSON bool, flags map[string][]string, err error) {
	flags = make(map[string][]string)
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--json":
			asJSON = true
		case strings.HasPrefix(a, "--"):
			name := strings.TrimPrefix(a, "--")
			if i+1 >= len(args) {
				return false, nil, fmt.Errorf("flag --%s requires a value", name)
			}
			i++
			flags[name] = append(flags[name], args[i])
		default:
			flags["_positional"] = append(flags["_positional"], a)
		}
	}
	return asJSON, flags, nil
}

func intFlag(flags map[string][]string, name string) (int, error) {
	vals, ok := flags[name]
	if !ok || len(vals) == 0 {
		return 0, fmt.Errorf("missing required --%s", name)
	}
	return strconv.Atoi(vals[len(vals)-1])
}
