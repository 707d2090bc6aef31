package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/omunroe-com/shiftspace/internal/domain"
)

type ReplicationOptions struct {
	MaxRetries      uint64
	InitialInterval time.Duration
}

func DefaultReplicationOptions() ReplicationOptions {
	return ReplicationOptions{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
	}
}

// ReplicationEngine moves shift copies between stores. Every call is idempotent
// and retried with bounded exponential backoff.
type ReplicationEngine struct {
	repo       ShiftRepository
	replicator Replicator
	opts       ReplicationOptions
}

func NewReplicationEngine(repo ShiftRepository, replicator Replicator, opts ReplicationOptions) *ReplicationEngine {
	return &ReplicationEngine{
		repo:       repo,
		replicator: replicator,
		opts:       opts,
	}
}

func (e *ReplicationEngine) retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	if e.opts.InitialInterval > 0 {
		b.InitialInterval = e.opts.InitialInterval
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, e.opts.MaxRetries), ctx))
}

// Replicate asks for source to be mirrored into target. It returns once the
// request is accepted, not once data has moved.
func (e *ReplicationEngine) Replicate(ctx context.Context, source, target domain.StoreID) error {
	if source == target {
		return nil
	}
	err := e.retry(ctx, func() error {
		return e.replicator.Request(ctx, source, target)
	})
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("replicate %s -> %s", source, target))
	}
	return nil
}

// CopyTo writes shift into store only if no copy is there yet.
func (e *ReplicationEngine) CopyTo(ctx context.Context, shift *domain.Shift, store domain.StoreID) error {
	err := e.retry(ctx, func() error {
		exists, err := e.exists(ctx, store, shift.ID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		return e.repo.Store(ctx, store, shift)
	})
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("copy %s to %s", shift.ID, store))
	}
	return nil
}

// UpdateIn overwrites the copy of shift in store. It fails with domain.ErrNoCopy
// when there is nothing to overwrite.
func (e *ReplicationEngine) UpdateIn(ctx context.Context, shift *domain.Shift, store domain.StoreID) error {
	err := e.retry(ctx, func() error {
		exists, err := e.exists(ctx, store, shift.ID)
		if err != nil {
			return err
		}
		if !exists {
			return backoff.Permanent(domain.ErrNoCopy)
		}
		return e.repo.Store(ctx, store, shift)
	})
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("update %s in %s", shift.ID, store))
	}
	return nil
}

// CopyOrUpdateTo makes store hold the current state of shift. created is true
// when any attempt found no copy, so a write that landed before a retried
// error still counts as a creation.
func (e *ReplicationEngine) CopyOrUpdateTo(ctx context.Context, shift *domain.Shift, store domain.StoreID) (created bool, err error) {
	err = e.retry(ctx, func() error {
		exists, err := e.exists(ctx, store, shift.ID)
		if err != nil {
			return err
		}
		if !exists {
			created = true
		}
		return e.repo.Store(ctx, store, shift)
	})
	if err != nil {
		return false, errors.Wrap(err, fmt.Sprintf("copy or update %s in %s", shift.ID, store))
	}
	return created, nil
}

func (e *ReplicationEngine) exists(ctx context.Context, store domain.StoreID, id string) (bool, error) {
	found, err := e.repo.Exists(ctx, store, []string{id})
	if err != nil {
		return false, err
	}
	return found[id], nil
}

// Remove deletes the copy of id from store. A missing copy is not an error.
func (e *ReplicationEngine) Remove(ctx context.Context, id string, store domain.StoreID) error {
	err := e.retry(ctx, func() error {
		err := e.repo.Delete(ctx, store, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("remove %s from %s", id, store))
	}
	return nil
}
