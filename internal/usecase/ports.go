package usecase

import (
	"context"

	"github.com/omunroe-com/shiftspace/internal/domain"
)

// ShiftRepository stores shift copies addressed by (store, id).
type ShiftRepository interface {
	Load(ctx context.Context, store domain.StoreID, id string) (*domain.Shift, error)
	LoadMany(ctx context.Context, store domain.StoreID, ids []string) ([]*domain.Shift, error)
	Exists(ctx context.Context, store domain.StoreID, ids []string) (map[string]bool, error)
	Store(ctx context.Context, store domain.StoreID, shift *domain.Shift) error
	Delete(ctx context.Context, store domain.StoreID, id string) error
}

// Replicator accepts one-way mirror requests; completion is eventual.
type Replicator interface {
	Request(ctx context.Context, source, target domain.StoreID) error
}

// GroupService lets a group decide how it keeps its own copy of a shift.
type GroupService interface {
	AddShift(ctx context.Context, groupID string, shift *domain.Shift) error
	UpdateShift(ctx context.Context, groupID string, shift *domain.Shift) error
}

// ActorDirectory resolves relations and metadata of users and groups.
type ActorDirectory interface {
	Followers(ctx context.Context, actorID string) ([]string, error)
	WritableGroups(ctx context.Context, actorID string) ([]string, error)
	Profiles(ctx context.Context, actorIDs []string) (map[string]domain.Profile, error)
}

type FavoriteRepository interface {
	Exists(ctx context.Context, actorID string, shiftIDs []string) (map[string]bool, error)
	CountByShift(ctx context.Context, shiftIDs []string) (map[string]int64, error)
}

type CommentRepository interface {
	CountByShift(ctx context.Context, shiftIDs []string) (map[string]int64, error)
	DeleteThread(ctx context.Context, shiftID string) error
}

// SearchGateway runs a query against the external index and returns matching shift ids.
type SearchGateway interface {
	Search(ctx context.Context, query string, start, limit int) ([]string, error)
}

type Notifier interface {
	Notify(ctx context.Context, event domain.ShiftEvent) error
}
