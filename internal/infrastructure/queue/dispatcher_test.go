package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldercare/careconnect/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.DecisionEvent
	err    error
	done   chan struct{}
	want   int
}

func (r *recordingRepo) InsertEvent(_ context.Context, e *domain.DecisionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	if len(r.events) == r.want {
		close(r.done)
	}
	return r.err
}

func TestDispatcher_PersistsInOrderPerRequest(t *testing.T) {
	repo := &recordingRepo{done: make(chan struct{}), want: 4}
	d := NewDispatcher(3, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Enqueue(domain.DecisionEvent{RequestID: "a", Status: domain.StatusApproved})
	d.Enqueue(domain.DecisionEvent{RequestID: "b", Status: domain.StatusRejected})
	d.Enqueue(domain.DecisionEvent{RequestID: "a", Status: domain.StatusRejected})
	d.Enqueue(domain.DecisionEvent{RequestID: "a", Status: domain.StatusPending})

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("events not persisted in time")
	}
	cancel()
	d.Wait()

	var seen []domain.RequestStatus
	for _, e := range repo.events {
		if e.RequestID == "a" {
			seen = append(seen, e.Status)
		}
	}
	want := []domain.RequestStatus{domain.StatusApproved, domain.StatusRejected, domain.StatusPending}
	if len(seen) != len(want) {
		t.Fatalf("expected %d events for a, got %v", len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("order mismatch at %d: %v", i, seen)
		}
	}
}

func TestDispatcher_WriteErrorDoesNotStopWorker(t *testing.T) {
	repo := &recordingRepo{done: make(chan struct{}), want: 2, err: errors.New("mongo down")}
	d := NewDispatcher(1, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(domain.DecisionEvent{RequestID: "x"})
	d.Enqueue(domain.DecisionEvent{RequestID: "y"})

	select {
	case <-repo.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker stopped after a failed write")
	}
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(0, &recordingRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected default worker count, got %d", len(d.workers))
	}
	if d.shardIndex("42") != d.shardIndex("42") {
		t.Fatalf("shard index must be deterministic")
	}
}
