// Package slashing implements the per-provider slashing FSM (spec §4.8):
// jail on repeated bad windows, unjail on a good window once cooldown has
// elapsed, soft-slash stake on each violation.
package slashing

import (
	"github.com/animicaorg/animica-node/internal/types"
)

// Params are the engine's fixed tunables.
type Params struct {
	TrapsMin            float64
	QosMin              float64
	JailAfterViolations uint32
	CooldownBlocks      uint64
	PenaltyPerViolation types.Amount
}

// WindowStats summarizes one evaluation window's proof outcomes for a
// provider (spec §4.8).
type WindowStats struct {
	Total   uint64
	TrapsOk uint64
	QosOk   uint64
}

// EventKind enumerates the possible FSM transitions emitted by ProcessWindow.
type EventKind string

const (
	EventJail   EventKind = "jail"
	EventUnjail EventKind = "unjail"
	EventWarn   EventKind = "warn"
)

// Event is the transition ProcessWindow reports, or nil if the window
// produced no state change.
type Event struct {
	Kind       EventKind
	Height     uint64
	Violations uint32
}

// isGood reports whether a window meets both the trap and QoS pass-rate
// floors. A window with zero samples is never good.
func isGood(stats WindowStats, params Params) bool {
	if stats.Total == 0 {
		return false
	}
	trapsRatio := float64(stats.TrapsOk) / float64(stats.Total)
	qosRatio := float64(stats.QosOk) / float64(stats.Total)
	return trapsRatio >= params.TrapsMin && qosRatio >= params.QosMin
}

// ProcessWindow evaluates one window for provider and mutates it in place
// per the FSM in spec §4.8:
//
//   - Jailed, height >= jail_until_height, good window: unjail, reset
//     violations, emit unjail.
//   - Jailed, otherwise: no change, no event.
//   - Not jailed, good window: no change, no event.
//   - Not jailed, bad window: increment violations, debit stake by
//     penalty_per_violation (clamped at zero). If violations reach the
//     jail threshold: jail, set jail_until_height, emit jail. Otherwise
//     emit warn.
func ProcessWindow(provider *types.ProviderRecord, height uint64, stats WindowStats, params Params) *Event {
	if provider.Jailed {
		if height >= provider.JailUntilHeight && isGood(stats, params) {
			provider.Jailed = false
			provider.Violations = 0
			return &Event{Kind: EventUnjail, Height: height}
		}
		return nil
	}

	if isGood(stats, params) {
		return nil
	}

	provider.Violations++
	if provider.Stake.Cmp(params.PenaltyPerViolation) >= 0 {
		provider.Stake = provider.Stake.Sub(params.PenaltyPerViolation)
	} else {
		provider.Stake = types.Zero
	}

	if provider.Violations >= params.JailAfterViolations {
		provider.Jailed = true
		provider.JailUntilHeight = height + params.CooldownBlocks
		return &Event{Kind: EventJail, Height: height, Violations: provider.Violations}
	}
	return &Event{Kind: EventWarn, Height: height, Violations: provider.Violations}
}
