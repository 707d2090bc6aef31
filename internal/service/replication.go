package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/omunroe-com/shiftspace/internal/domain"
)

type ReplicationQueue interface {
	Enqueue(ctx context.Context, edge domain.ReplicationEdge) error
	Pop(ctx context.Context, timeout time.Duration) (*domain.ReplicationEdge, error)
}

type StoreMirror interface {
	Mirror(ctx context.Context, source, target domain.StoreID) (int64, error)
}

type EdgeStatus interface {
	MarkCompleted(ctx context.Context, edge domain.ReplicationEdge, mirrored int64, at time.Time) error
	MarkFailed(ctx context.Context, edge domain.ReplicationEdge, cause error) error
	Stale(ctx context.Context, cutoff time.Time, limit int) ([]domain.ReplicationEdge, error)
}

type WorkerOptions struct {
	PollTimeout       time.Duration
	ErrorBackoff      time.Duration
	ReconcileInterval time.Duration
	StaleAfter        time.Duration
	ReconcileBatch    int
}

func DefaultWorkerOptions() WorkerOptions {
	return WorkerOptions{
		PollTimeout:       5 * time.Second,
		ErrorBackoff:      time.Second,
		ReconcileInterval: time.Minute,
		StaleAfter:        5 * time.Minute,
		ReconcileBatch:    100,
	}
}

// ReplicationWorker drains the replication queue, mirrors each edge and
// records the outcome. Edges that stay incomplete are queued again.
type ReplicationWorker struct {
	queue  ReplicationQueue
	mirror StoreMirror
	edges  EdgeStatus
	logger *zap.Logger
	opts   WorkerOptions
}

func NewReplicationWorker(queue ReplicationQueue, mirror StoreMirror, edges EdgeStatus, logger *zap.Logger, opts WorkerOptions) *ReplicationWorker {
	return &ReplicationWorker{
		queue:  queue,
		mirror: mirror,
		edges:  edges,
		logger: logger,
		opts:   opts,
	}
}

// Run blocks until ctx is cancelled.
func (w *ReplicationWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.consume(ctx) })
	if w.opts.ReconcileInterval > 0 {
		g.Go(func() error { return w.reconcileLoop(ctx) })
	}
	return g.Wait()
}

func (w *ReplicationWorker) consume(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		edge, err := w.queue.Pop(ctx, w.opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Warn("replication queue pop failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.opts.ErrorBackoff):
			}
			continue
		}
		if edge == nil {
			continue
		}

		w.Process(ctx, *edge)
	}
}

// Process mirrors one edge and records its status.
func (w *ReplicationWorker) Process(ctx context.Context, edge domain.ReplicationEdge) {
	mirrored, err := w.mirror.Mirror(ctx, edge.Source, edge.Target)
	if err != nil {
		w.logger.Warn("replication failed",
			zap.String("source", string(edge.Source)),
			zap.String("target", string(edge.Target)),
			zap.Error(err),
		)
		if err := w.edges.MarkFailed(ctx, edge, err); err != nil {
			w.logger.Warn("failed to record replication failure", zap.Error(err))
		}
		return
	}

	w.logger.Debug("replicated",
		zap.String("source", string(edge.Source)),
		zap.String("target", string(edge.Target)),
		zap.Int64("mirrored", mirrored),
	)
	if err := w.edges.MarkCompleted(ctx, edge, mirrored, time.Now()); err != nil {
		w.logger.Warn("failed to record replication status", zap.Error(err))
	}
}

func (w *ReplicationWorker) reconcileLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.ReconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Reconcile(ctx); err != nil && ctx.Err() == nil {
				w.logger.Warn("replication reconcile failed", zap.Error(err))
			}
		}
	}
}

// Reconcile queues again every edge that has not completed since it was requested.
func (w *ReplicationWorker) Reconcile(ctx context.Context) error {
	stale, err := w.edges.Stale(ctx, time.Now().Add(-w.opts.StaleAfter), w.opts.ReconcileBatch)
	if err != nil {
		return err
	}
	for _, edge := range stale {
		if err := w.queue.Enqueue(ctx, edge); err != nil {
			return err
		}
	}
	if len(stale) > 0 {
		w.logger.Info("requeued stale replication edges", zap.Int("count", len(stale)))
	}
	return nil
}
