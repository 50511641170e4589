package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// logRotator rotates the on-disk log file; it also satisfies io.Writer so
// it can be fed directly into a slog.Backend, mirroring the teacher's own
// dual stdout+rotated-file logging setup.
var logRotator *rotator.Rotator

// subsystemLoggers holds one tagged slog.Logger per subsystem (spec §2
// ambient stack: "subsystem-tagged loggers (mpol, exec, cnsx, slsh,
// fork) created through a log.Backend").
var subsystemLoggers = make(map[string]slog.Logger)

// initLogging wires stdout plus a rotated log file in cfg.LogDir into one
// slog.Backend, and creates this binary's fixed set of subsystem loggers.
func initLogging(cfg *config) error {
	if err := os.MkdirAll(cfg.LogDir, 0o700); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	logFile := filepath.Join(cfg.LogDir, "animicad.log")
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("create log rotator: %w", err)
	}
	logRotator = r

	backend := slog.NewBackend(io2{stdout: os.Stdout, rotator: r})

	for _, tag := range []string{"nmgr", "mpol", "exec", "cnsx", "slsh", "fork"} {
		subsystemLoggers[tag] = backend.Logger(tag)
	}

	return setLogLevels(cfg.DebugLevel)
}

// setLogLevels parses a debuglevel string (a bare level, applied to every
// subsystem) and assigns it to each subsystem logger, mirroring the
// teacher's --debuglevel convention (this binary does not support the
// "subsystem=level" comma form, since it only has six fixed subsystems).
func setLogLevels(levelSpec string) error {
	level, ok := slog.LevelFromString(levelSpec)
	if !ok {
		return fmt.Errorf("unknown debug level %q", levelSpec)
	}
	for _, l := range subsystemLoggers {
		l.SetLevel(level)
	}
	return nil
}

// io2 fans a single Write out to both stdout and the rotated log file, the
// same "log to console and to disk" behavior the teacher's binaries use.
type io2 struct {
	stdout interface{ Write([]byte) (int, error) }
	rotator *rotator.Rotator
}

func (w io2) Write(p []byte) (int, error) {
	_, _ = w.stdout.Write(p)
	return w.rotator.Write(p)
}

func closeLogging() {
	if logRotator != nil {
		_ = logRotator.Close()
	}
}
