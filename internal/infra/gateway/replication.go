package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/omunroe-com/shiftspace/internal/domain"
	"github.com/omunroe-com/shiftspace/internal/usecase"
)

const DefaultQueueKey = "shiftspace:replication"

var _ usecase.Replicator = (*ReplicationGateway)(nil)

// EdgeRecorder keeps track of requested edges.
type EdgeRecorder interface {
	MarkRequested(ctx context.Context, edge domain.ReplicationEdge) error
}

// ReplicationGateway queues mirror requests on a redis list. A request is
// accepted once it is on the list. The edge is recorded before the push so
// the worker always finds a row to complete.
type ReplicationGateway struct {
	rdb      redis.Cmdable
	edges    EdgeRecorder
	logger   *zap.Logger
	queueKey string
}

func NewReplicationGateway(rdb redis.Cmdable, edges EdgeRecorder, logger *zap.Logger, queueKey string) *ReplicationGateway {
	if queueKey == "" {
		queueKey = DefaultQueueKey
	}
	return &ReplicationGateway{
		rdb:      rdb,
		edges:    edges,
		logger:   logger,
		queueKey: queueKey,
	}
}

func (g *ReplicationGateway) Request(ctx context.Context, source, target domain.StoreID) error {
	edge := domain.ReplicationEdge{
		Source:      source,
		Target:      target,
		RequestedAt: time.Now(),
	}

	if g.edges != nil {
		if err := g.edges.MarkRequested(ctx, edge); err != nil {
			g.logger.Warn("failed to record replication edge",
				zap.String("source", string(source)),
				zap.String("target", string(target)),
				zap.Error(err),
			)
		}
	}

	return g.Enqueue(ctx, edge)
}

func (g *ReplicationGateway) Enqueue(ctx context.Context, edge domain.ReplicationEdge) error {
	payload, err := json.Marshal(edge)
	if err != nil {
		return err
	}
	return g.rdb.RPush(ctx, g.queueKey, payload).Err()
}

// Pop waits up to timeout for the next request. It returns nil without error
// when nothing arrived.
func (g *ReplicationGateway) Pop(ctx context.Context, timeout time.Duration) (*domain.ReplicationEdge, error) {
	values, err := g.rdb.BLPop(ctx, timeout, g.queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// values is [key, payload]
	if len(values) != 2 {
		return nil, nil
	}

	var edge domain.ReplicationEdge
	if err := json.Unmarshal([]byte(values[1]), &edge); err != nil {
		return nil, err
	}
	return &edge, nil
}
