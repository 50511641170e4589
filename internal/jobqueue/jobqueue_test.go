package jobqueue

import (
	"testing"

	"github.com/animicaorg/animica-node/internal/vmerr"
)

func TestEnqueueIsIdempotentForIdenticalParameters(t *testing.T) {
	q := NewQueue(2)
	id1 := q.Enqueue(7, 100, []byte("tx"), []byte("caller"), []byte("payload"))
	id2 := q.Enqueue(7, 100, []byte("tx"), []byte("caller"), []byte("payload"))
	if id1 != id2 {
		t.Fatalf("identical job parameters must derive the same id")
	}

	status, ok := q.Poll(id1)
	if !ok || status != StatusQueued {
		t.Fatalf("expected queued status, got %v ok=%v", status, ok)
	}
}

func TestPollUnknownIdReturnsNotOk(t *testing.T) {
	q := NewQueue(1)
	var zero [32]byte
	if _, ok := q.Poll(zero); ok {
		t.Fatalf("expected unknown id to report not-ok")
	}
}

func TestAssignEnforcesPerProviderConcurrency(t *testing.T) {
	q := NewQueue(1)
	id1 := q.Enqueue(1, 1, nil, []byte("a"), []byte("job1"))
	id2 := q.Enqueue(1, 1, nil, []byte("a"), []byte("job2"))

	if err := q.Assign("prov", id1); err != nil {
		t.Fatalf("first assign should succeed: %v", err)
	}
	if err := q.Assign("prov", id2); !vmerr.As(err, vmerr.QuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}

	// a different provider has its own quota
	if err := q.Assign("other", id2); err != nil {
		t.Fatalf("different provider should have independent quota: %v", err)
	}
}

func TestAssignRejectsUnknownOrNonQueuedJob(t *testing.T) {
	q := NewQueue(1)
	var zero [32]byte
	if err := q.Assign("prov", zero); err == nil {
		t.Fatalf("expected unknown job id to be rejected")
	}

	id := q.Enqueue(1, 1, nil, []byte("a"), []byte("job"))
	if err := q.Assign("prov", id); err != nil {
		t.Fatalf("first assign should succeed: %v", err)
	}
	if err := q.Assign("prov", id); err == nil {
		t.Fatalf("expected re-assigning a running job to be rejected")
	}
}

func TestCompleteSetsStatusAndReleasesLease(t *testing.T) {
	q := NewQueue(1)
	id := q.Enqueue(1, 1, nil, []byte("a"), []byte("job"))
	q.Assign("prov", id)

	if err := q.Complete(id, []byte("result")); err != nil {
		t.Fatalf("complete: %v", err)
	}
	status, ok := q.Poll(id)
	if !ok || status != StatusDone {
		t.Fatalf("expected done status, got %v ok=%v", status, ok)
	}

	// the lease was released, so the provider's quota slot is free again
	id2 := q.Enqueue(1, 1, nil, []byte("a"), []byte("job2"))
	if err := q.Assign("prov", id2); err != nil {
		t.Fatalf("expected freed quota slot after complete: %v", err)
	}
}

func TestFailSetsStatusAndReleasesLease(t *testing.T) {
	q := NewQueue(1)
	id := q.Enqueue(1, 1, nil, []byte("a"), []byte("job"))
	q.Assign("prov", id)

	if err := q.Fail(id); err != nil {
		t.Fatalf("fail: %v", err)
	}
	status, ok := q.Poll(id)
	if !ok || status != StatusFailed {
		t.Fatalf("expected failed status, got %v ok=%v", status, ok)
	}
}

func TestReleaseIsNoOpOnUnknownOrUnleaseredId(t *testing.T) {
	q := NewQueue(1)
	var zero [32]byte
	q.Release(zero) // must not panic

	id := q.Enqueue(1, 1, nil, []byte("a"), []byte("job"))
	q.Release(id) // queued, never leased: still a no-op

	status, ok := q.Poll(id)
	if !ok || status != StatusQueued {
		t.Fatalf("release must not change status of an unleased job")
	}
}

func TestReleaseNeverDoubleCountsAQuotaSlot(t *testing.T) {
	q := NewQueue(1)
	id := q.Enqueue(1, 1, nil, []byte("a"), []byte("job"))
	q.Assign("prov", id)

	q.Release(id)
	q.Release(id) // second release of the same id must remain a no-op

	id2 := q.Enqueue(1, 1, nil, []byte("a"), []byte("job2"))
	if err := q.Assign("prov", id2); err != nil {
		t.Fatalf("expected quota slot to be free after release: %v", err)
	}
}
