package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/omunroe-com/shiftspace/internal/domain"
	"github.com/omunroe-com/shiftspace/internal/usecase"
)

type memRepo struct {
	mu   sync.Mutex
	docs map[domain.StoreID]map[string]*domain.Shift
}

func (r *memRepo) Load(ctx context.Context, store domain.StoreID, id string) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.docs[store][id]; ok {
		return s, nil
	}
	return nil, domain.NotFoundError{Resource: "shift"}
}

func (r *memRepo) LoadMany(ctx context.Context, store domain.StoreID, ids []string) ([]*domain.Shift, error) {
	return nil, nil
}

func (r *memRepo) Exists(ctx context.Context, store domain.StoreID, ids []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for _, id := range ids {
		_, out[id] = r.docs[store][id]
	}
	return out, nil
}

func (r *memRepo) Store(ctx context.Context, store domain.StoreID, shift *domain.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.docs[store] == nil {
		r.docs[store] = map[string]*domain.Shift{}
	}
	r.docs[store][shift.ID] = shift.Clone()
	return nil
}

func (r *memRepo) Delete(ctx context.Context, store domain.StoreID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs[store], id)
	return nil
}

type recordingReplicator struct {
	mu      sync.Mutex
	targets []domain.StoreID
	failFor domain.StoreID
}

func (r *recordingReplicator) Request(ctx context.Context, source, target domain.StoreID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if target == r.failFor {
		return errors.New("queue full")
	}
	r.targets = append(r.targets, target)
	return nil
}

type staticMembers map[string][]string

func (m staticMembers) Members(ctx context.Context, groupID string) ([]string, error) {
	return m[groupID], nil
}

func newGroupFixture() (*GroupService, *memRepo, *recordingReplicator) {
	repo := &memRepo{docs: map[domain.StoreID]map[string]*domain.Shift{}}
	replicator := &recordingReplicator{}
	engine := usecase.NewReplicationEngine(repo, replicator, usecase.ReplicationOptions{MaxRetries: 0, InitialInterval: time.Millisecond})
	svc := NewGroupService(engine, staticMembers{"g1": {"m1", "m2"}})
	return svc, repo, replicator
}

func TestGroupAddShiftFeedsMembers(t *testing.T) {
	svc, repo, replicator := newGroupFixture()
	s := domain.NewShift("s1", "u1", time.Now())

	if err := svc.AddShift(context.Background(), "g1", s); err != nil {
		t.Fatalf("add shift failed: %v", err)
	}
	if _, ok := repo.docs["group_g1"]["s1"]; !ok {
		t.Fatalf("expected copy in group store")
	}
	if len(replicator.targets) != 2 || replicator.targets[0] != "user_m1/feed" || replicator.targets[1] != "user_m2/feed" {
		t.Fatalf("unexpected member replication %v", replicator.targets)
	}
}

func TestGroupUpdateShiftOverwrites(t *testing.T) {
	svc, repo, _ := newGroupFixture()
	s := domain.NewShift("s1", "u1", time.Now())
	s.Summary = "v1"
	if err := svc.AddShift(context.Background(), "g1", s); err != nil {
		t.Fatalf("add shift failed: %v", err)
	}

	s.Summary = "v2"
	if err := svc.UpdateShift(context.Background(), "g1", s); err != nil {
		t.Fatalf("update shift failed: %v", err)
	}
	if repo.docs["group_g1"]["s1"].Summary != "v2" {
		t.Fatalf("expected group copy to be updated")
	}
}

func TestGroupMemberFailureIsReported(t *testing.T) {
	svc, _, replicator := newGroupFixture()
	replicator.failFor = "user_m1/feed"

	err := svc.AddShift(context.Background(), "g1", domain.NewShift("s1", "u1", time.Now()))
	if err == nil {
		t.Fatalf("expected member replication error")
	}
	if len(replicator.targets) != 1 || replicator.targets[0] != "user_m2/feed" {
		t.Fatalf("remaining members should still be fed, got %v", replicator.targets)
	}
}
