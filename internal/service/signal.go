package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/omunroe-com/shiftspace/internal/domain"
	"github.com/omunroe-com/shiftspace/internal/usecase"
)

const EventChannel = "shiftspace:events"

var _ usecase.Notifier = (*SignalService)(nil)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Notify(ctx context.Context, event domain.ShiftEvent) error {
	return s.Publish(ctx, EventChannel, event)
}

func (s *SignalService) Publish(ctx context.Context, channel string, event any) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err

	}

	return nil
}
