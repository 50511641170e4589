// Package beacon implements the randomness beacon's commit-reveal round FSM
// (spec §4.10): participants commit to a salt+payload, then reveal it once
// the commit window closes, and the round's 32-byte beacon output mixes
// every valid reveal once the round finalizes. The core only consumes the
// finalized beacon digest; commit/reveal bookkeeping is what drives it.
package beacon

import (
	"sort"

	"github.com/animicaorg/animica-node/internal/idhash"
	"github.com/animicaorg/animica-node/internal/vmerr"
)

// Phase enumerates a round's position in its commit-reveal lifecycle.
type Phase int

const (
	PhaseCommit Phase = iota
	PhaseReveal
	PhaseFinalized
)

// CommitRecord is a participant's commitment, C = H(domain|address|salt|payload).
type CommitRecord struct {
	Participant string
	Commitment  idhash.Digest
}

// RevealRecord is a participant's opening of their commitment.
type RevealRecord struct {
	Participant string
	Salt        []byte
	Payload     []byte
}

// Round tracks one randomness-beacon round's commit/reveal state.
type Round struct {
	RoundID uint64
	Phase   Phase
	Commits map[string]CommitRecord
	Reveals map[string]RevealRecord
	Output  idhash.Digest
}

// NewRound starts a round in the commit phase.
func NewRound(roundID uint64) *Round {
	return &Round{
		RoundID: roundID,
		Phase:   PhaseCommit,
		Commits: make(map[string]CommitRecord),
		Reveals: make(map[string]RevealRecord),
	}
}

// Commitment computes C = H(domain|address|salt|payload), the value a
// participant commits to without revealing salt/payload yet.
func Commitment(participant string, salt, payload []byte) idhash.Digest {
	return idhash.BeaconCommitment([]byte(participant), salt, payload)
}

// Commit records participant's commitment. Only valid during PhaseCommit.
func (r *Round) Commit(participant string, salt, payload []byte) error {
	if r.Phase != PhaseCommit {
		return vmerr.New(vmerr.Revert, "commit submitted outside the commit phase", "round", r.RoundID)
	}
	r.Commits[participant] = CommitRecord{Participant: participant, Commitment: Commitment(participant, salt, payload)}
	return nil
}

// OpenReveal transitions the round from PhaseCommit to PhaseReveal.
func (r *Round) OpenReveal() error {
	if r.Phase != PhaseCommit {
		return vmerr.New(vmerr.Revert, "round is not in the commit phase", "round", r.RoundID)
	}
	r.Phase = PhaseReveal
	return nil
}

// Reveal opens a participant's commitment. The salt/payload must hash back
// to the commitment recorded during PhaseCommit; a participant who never
// committed, or whose reveal doesn't match, is rejected.
func (r *Round) Reveal(participant string, salt, payload []byte) error {
	if r.Phase != PhaseReveal {
		return vmerr.New(vmerr.Revert, "reveal submitted outside the reveal phase", "round", r.RoundID)
	}
	commit, ok := r.Commits[participant]
	if !ok {
		return vmerr.New(vmerr.Revert, "no commitment on record for participant", "participant", participant)
	}
	if Commitment(participant, salt, payload) != commit.Commitment {
		return vmerr.New(vmerr.Revert, "reveal does not match recorded commitment", "participant", participant)
	}
	r.Reveals[participant] = RevealRecord{Participant: participant, Salt: salt, Payload: payload}
	return nil
}

// Finalize mixes every valid reveal into the round's 32-byte beacon output
// and transitions to PhaseFinalized. Participants are mixed in
// lexicographic order by id so the result does not depend on reveal
// submission order.
func (r *Round) Finalize() (idhash.Digest, error) {
	if r.Phase != PhaseReveal {
		return idhash.Digest{}, vmerr.New(vmerr.Revert, "round is not in the reveal phase", "round", r.RoundID)
	}

	ids := make([]string, 0, len(r.Reveals))
	for id := range r.Reveals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	participants := make([][]byte, len(ids))
	salts := make([][]byte, len(ids))
	payloads := make([][]byte, len(ids))
	for i, id := range ids {
		rev := r.Reveals[id]
		participants[i] = []byte(rev.Participant)
		salts[i] = rev.Salt
		payloads[i] = rev.Payload
	}

	r.Output = idhash.BeaconMix(participants, salts, payloads)
	r.Phase = PhaseFinalized
	return r.Output, nil
}

// Beacon returns the finalized round's 32-byte output, meant to be mixed
// into PoW draws (spec §4.10). It is only meaningful once Finalize has run.
func (r *Round) Beacon() (idhash.Digest, bool) {
	if r.Phase != PhaseFinalized {
		return idhash.Digest{}, false
	}
	return r.Output, true
}
