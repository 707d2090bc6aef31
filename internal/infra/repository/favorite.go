package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/omunroe-com/shiftspace/internal/infra/database/models"
	"github.com/omunroe-com/shiftspace/internal/usecase"
)

var _ usecase.FavoriteRepository = (*FavoriteRepository)(nil)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Exists(ctx context.Context, actorID string, shiftIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(shiftIDs))
	if actorID == "" || len(shiftIDs) == 0 {
		return result, nil
	}

	var found []string
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("actor_id = ? AND shift_id IN ?", actorID, shiftIDs).
		Pluck("shift_id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		result[id] = true
	}
	return result, nil
}

func (r *FavoriteRepository) CountByShift(ctx context.Context, shiftIDs []string) (map[string]int64, error) {
	return countByShift(ctx, r.db, &models.Favorite{}, shiftIDs)
}

type shiftCount struct {
	ShiftID string
	Count   int64
}

// countByShift is the reduce step shared by the favorite and comment tables.
func countByShift(ctx context.Context, db *gorm.DB, model any, shiftIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(shiftIDs))
	if len(shiftIDs) == 0 {
		return result, nil
	}

	var rows []shiftCount
	err := db.WithContext(ctx).
		Model(model).
		Select("shift_id, count(*) AS count").
		Where("shift_id IN ?", shiftIDs).
		Group("shift_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ShiftID] = row.Count
	}
	return result, nil
}
