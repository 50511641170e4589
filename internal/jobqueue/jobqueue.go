// Package jobqueue implements the AICF-lite off-chain compute job queue
// consumed by execution when a transaction triggers off-chain work (spec
// §4.10): enqueue(job) -> id, poll(id) -> status, release(id). Job ids are
// the same deterministic derivation as everywhere else in the node
// (internal/idhash.JobID), so a job submitted twice with identical
// parameters is idempotently the same id.
package jobqueue

import (
	"sync"

	"github.com/animicaorg/animica-node/internal/idhash"
	"github.com/animicaorg/animica-node/internal/vmerr"
)

// Status is a job's lifecycle state.
type Status int

const (
	StatusQueued Status = iota
	StatusRunning
	StatusDone
	StatusFailed
)

// Job is one off-chain compute request and its current state.
type Job struct {
	ID       idhash.Digest
	ChainID  uint64
	Height   uint64
	TxHash   []byte
	Caller   []byte
	Payload  []byte
	Provider string // assigned provider id, empty until leased
	Status   Status
	Result   []byte
}

// Queue is the in-memory AICF job queue plus per-provider concurrency
// quota (spec §4.5.4's QuotaTracker, reused here for job leases rather than
// mempool senders). A single mutex serializes every operation, matching
// the single-writer-lock discipline spec §5 requires of shared mempool-ish
// state.
type Queue struct {
	mu            sync.Mutex
	jobs          map[idhash.Digest]*Job
	active        map[string]map[idhash.Digest]struct{}
	maxConcurrent int
}

// NewQueue builds an empty queue capping each provider at maxConcurrent
// simultaneously leased jobs.
func NewQueue(maxConcurrent int) *Queue {
	return &Queue{
		jobs:          make(map[idhash.Digest]*Job),
		active:        make(map[string]map[idhash.Digest]struct{}),
		maxConcurrent: maxConcurrent,
	}
}

// Enqueue derives the job's deterministic id and queues it. Enqueuing the
// same (chainID, height, txHash, caller, payload) twice returns the
// existing job's id without creating a duplicate entry.
func (q *Queue) Enqueue(chainID, height uint64, txHash, caller, payload []byte) idhash.Digest {
	id := idhash.JobID(chainID, height, txHash, caller, payload)

	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.jobs[id]; !exists {
		q.jobs[id] = &Job{
			ID: id, ChainID: chainID, Height: height,
			TxHash: txHash, Caller: caller, Payload: payload,
			Status: StatusQueued,
		}
	}
	return id
}

// Poll returns a job's current status. ok is false if id is unknown.
func (q *Queue) Poll(id idhash.Digest) (Status, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return 0, false
	}
	return job.Status, true
}

// Assign leases a queued job to provider, subject to that provider's
// concurrency quota.
func (q *Queue) Assign(provider string, id idhash.Digest) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[id]
	if !ok {
		return vmerr.New(vmerr.Revert, "unknown job id")
	}
	if job.Status != StatusQueued {
		return vmerr.New(vmerr.Revert, "job is not queued", "status", job.Status)
	}

	set := q.active[provider]
	if set == nil {
		set = make(map[idhash.Digest]struct{})
		q.active[provider] = set
	}
	if q.maxConcurrent > 0 && len(set) >= q.maxConcurrent {
		return vmerr.New(vmerr.QuotaExceeded, "provider at maximum concurrent jobs", "provider", provider)
	}

	set[id] = struct{}{}
	job.Provider = provider
	job.Status = StatusRunning
	return nil
}

// Complete marks a running job done and stores its result.
func (q *Queue) Complete(id idhash.Digest, result []byte) error {
	return q.finish(id, StatusDone, result)
}

// Fail marks a running job failed.
func (q *Queue) Fail(id idhash.Digest) error {
	return q.finish(id, StatusFailed, nil)
}

func (q *Queue) finish(id idhash.Digest, status Status, result []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[id]
	if !ok {
		return vmerr.New(vmerr.Revert, "unknown job id")
	}
	job.Status = status
	job.Result = result
	q.releaseLocked(job)
	return nil
}

// Release frees a job's lease without changing its terminal status.
// Releasing an id that is unknown, or that holds no active lease, is a
// no-op — an id is never double-counted, matching the quota-tracker
// contract of spec §4.5.4.
func (q *Queue) Release(id idhash.Digest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return
	}
	q.releaseLocked(job)
}

func (q *Queue) releaseLocked(job *Job) {
	if job.Provider == "" {
		return
	}
	set := q.active[job.Provider]
	if set != nil {
		delete(set, job.ID)
		if len(set) == 0 {
			delete(q.active, job.Provider)
		}
	}
	job.Provider = ""
}
