package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/omunroe-com/shiftspace/internal/infra/database/models"
	"github.com/omunroe-com/shiftspace/internal/usecase"
)

var _ usecase.CommentRepository = (*CommentRepository)(nil)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) CountByShift(ctx context.Context, shiftIDs []string) (map[string]int64, error) {
	return countByShift(ctx, r.db, &models.Comment{}, shiftIDs)
}

func (r *CommentRepository) DeleteThread(ctx context.Context, shiftID string) error {
	return r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Delete(&models.Comment{}).Error
}
