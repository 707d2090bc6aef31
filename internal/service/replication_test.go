package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/omunroe-com/shiftspace/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeQueue struct {
	ch       chan domain.ReplicationEdge
	mu       sync.Mutex
	enqueued []domain.ReplicationEdge
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{ch: make(chan domain.ReplicationEdge, 16)}
}

func (q *fakeQueue) Enqueue(ctx context.Context, edge domain.ReplicationEdge) error {
	q.mu.Lock()
	q.enqueued = append(q.enqueued, edge)
	q.mu.Unlock()
	q.ch <- edge
	return nil
}

func (q *fakeQueue) Pop(ctx context.Context, timeout time.Duration) (*domain.ReplicationEdge, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case edge := <-q.ch:
		return &edge, nil
	case <-time.After(timeout):
		return nil, nil
	}
}

type fakeMirror struct {
	mu    sync.Mutex
	calls []domain.ReplicationEdge
	err   error
}

func (m *fakeMirror) Mirror(ctx context.Context, source, target domain.StoreID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, domain.ReplicationEdge{Source: source, Target: target})
	if m.err != nil {
		return 0, m.err
	}
	return 3, nil
}

type fakeEdges struct {
	mu        sync.Mutex
	completed map[domain.StoreID]int64
	failed    map[domain.StoreID]string
	stale     []domain.ReplicationEdge
}

func newFakeEdges() *fakeEdges {
	return &fakeEdges{completed: map[domain.StoreID]int64{}, failed: map[domain.StoreID]string{}}
}

func (e *fakeEdges) MarkCompleted(ctx context.Context, edge domain.ReplicationEdge, mirrored int64, at time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completed[edge.Target] = mirrored
	return nil
}

func (e *fakeEdges) MarkFailed(ctx context.Context, edge domain.ReplicationEdge, cause error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed[edge.Target] = cause.Error()
	return nil
}

func (e *fakeEdges) Stale(ctx context.Context, cutoff time.Time, limit int) ([]domain.ReplicationEdge, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stale, nil
}

func (e *fakeEdges) isCompleted(target domain.StoreID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.completed[target]
	return ok
}

func testWorkerOptions() WorkerOptions {
	return WorkerOptions{
		PollTimeout:    10 * time.Millisecond,
		ErrorBackoff:   time.Millisecond,
		StaleAfter:     time.Minute,
		ReconcileBatch: 10,
	}
}

func TestReplicationWorkerMirrorsQueuedEdges(t *testing.T) {
	queue := newFakeQueue()
	mirror := &fakeMirror{}
	edges := newFakeEdges()
	w := NewReplicationWorker(queue, mirror, edges, zap.NewNop(), testWorkerOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	_ = queue.Enqueue(ctx, domain.ReplicationEdge{Source: "user_u1/public", Target: "user_f1/feed"})

	deadline := time.Now().Add(2 * time.Second)
	for !edges.isCompleted("user_f1/feed") {
		if time.Now().After(deadline) {
			t.Fatalf("edge was not mirrored")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("worker returned %v", err)
	}
	if edges.completed["user_f1/feed"] != 3 {
		t.Fatalf("expected mirrored count to be recorded")
	}
}

func TestReplicationWorkerRecordsFailure(t *testing.T) {
	mirror := &fakeMirror{err: errors.New("db down")}
	edges := newFakeEdges()
	w := NewReplicationWorker(newFakeQueue(), mirror, edges, zap.NewNop(), testWorkerOptions())

	w.Process(context.Background(), domain.ReplicationEdge{Source: "a", Target: "b"})

	if edges.failed["b"] != "db down" {
		t.Fatalf("expected failure to be recorded, got %v", edges.failed)
	}
	if len(edges.completed) != 0 {
		t.Fatalf("failed edge must not be marked completed")
	}
}

func TestReplicationWorkerReconcileRequeuesStale(t *testing.T) {
	queue := newFakeQueue()
	edges := newFakeEdges()
	edges.stale = []domain.ReplicationEdge{{Source: "a", Target: "b"}, {Source: "a", Target: "c"}}
	w := NewReplicationWorker(queue, &fakeMirror{}, edges, zap.NewNop(), testWorkerOptions())

	if err := w.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if len(queue.enqueued) != 2 {
		t.Fatalf("expected 2 requeued edges, got %d", len(queue.enqueued))
	}
}

func TestReplicationWorkerStopsOnCancel(t *testing.T) {
	opts := testWorkerOptions()
	opts.ReconcileInterval = 5 * time.Millisecond
	w := NewReplicationWorker(newFakeQueue(), &fakeMirror{}, newFakeEdges(), zap.NewNop(), opts)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
}
