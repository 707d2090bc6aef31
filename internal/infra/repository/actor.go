package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/zeebo/xxh3"
	"gorm.io/gorm"

	"github.com/omunroe-com/shiftspace/internal/domain"
	"github.com/omunroe-com/shiftspace/internal/infra/database/models"
	"github.com/omunroe-com/shiftspace/internal/usecase"
)

var _ usecase.ActorDirectory = (*ActorRepository)(nil)

const profileCacheTTL = 300 // seconds

// ActorRepository answers follower, membership and profile lookups. Profiles
// are cached in memcached when a client is given.
type ActorRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewActorRepository(db *gorm.DB, mc *memcache.Client) *ActorRepository {
	return &ActorRepository{db: db, mc: mc}
}

func (r *ActorRepository) Followers(ctx context.Context, actorID string) ([]string, error) {
	var followers []string
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", actorID).
		Order("follower_id").
		Pluck("follower_id", &followers).Error
	return followers, err
}

func (r *ActorRepository) WritableGroups(ctx context.Context, actorID string) ([]string, error) {
	var groups []string
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("actor_id = ? AND can_write = ?", actorID, true).
		Pluck("group_id", &groups).Error
	return groups, err
}

func (r *ActorRepository) Members(ctx context.Context, groupID string) ([]string, error) {
	var members []string
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("actor_id").
		Pluck("actor_id", &members).Error
	return members, err
}

func (r *ActorRepository) Profiles(ctx context.Context, actorIDs []string) (map[string]domain.Profile, error) {
	result := make(map[string]domain.Profile, len(actorIDs))
	if len(actorIDs) == 0 {
		return result, nil
	}

	remaining := actorIDs
	if r.mc != nil {
		remaining = r.fromCache(actorIDs, result)
	}
	if len(remaining) == 0 {
		return result, nil
	}

	var actors []models.Actor
	err := r.db.WithContext(ctx).
		Where("id IN ?", remaining).
		Find(&actors).Error
	if err != nil {
		return nil, err
	}

	for _, actor := range actors {
		profile := domain.Profile{
			ID:       actor.ID,
			UserName: actor.UserName,
			Gravatar: actor.Gravatar,
		}
		result[actor.ID] = profile
		if r.mc != nil {
			r.toCache(profile)
		}
	}
	return result, nil
}

// fromCache fills result from memcached and returns the ids it could not find.
// Cache errors are treated as misses.
func (r *ActorRepository) fromCache(actorIDs []string, result map[string]domain.Profile) []string {
	keys := make([]string, len(actorIDs))
	for i, id := range actorIDs {
		keys[i] = profileKey(id)
	}

	items, err := r.mc.GetMulti(keys)
	if err != nil {
		return actorIDs
	}

	remaining := []string{}
	for i, id := range actorIDs {
		item, ok := items[keys[i]]
		if !ok {
			remaining = append(remaining, id)
			continue
		}
		var profile domain.Profile
		if err := json.Unmarshal(item.Value, &profile); err != nil || profile.ID != id {
			remaining = append(remaining, id)
			continue
		}
		result[id] = profile
	}
	return remaining
}

func (r *ActorRepository) toCache(profile domain.Profile) {
	value, err := json.Marshal(profile)
	if err != nil {
		return
	}
	_ = r.mc.Set(&memcache.Item{
		Key:        profileKey(profile.ID),
		Value:      value,
		Expiration: profileCacheTTL,
	})
}

// actor ids are arbitrary text; memcached keys must be short and space free.
func profileKey(actorID string) string {
	return fmt.Sprintf("shiftspace:profile:%016x", xxh3.HashString(actorID))
}
