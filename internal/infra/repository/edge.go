package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omunroe-com/shiftspace/internal/domain"
	"github.com/omunroe-com/shiftspace/internal/infra/database/models"
)

// EdgeRepository keeps operational status of replication edges.
type EdgeRepository struct {
	db *gorm.DB
}

func NewEdgeRepository(db *gorm.DB) *EdgeRepository {
	return &EdgeRepository{db: db}
}

func (r *EdgeRepository) MarkRequested(ctx context.Context, edge domain.ReplicationEdge) error {
	row := models.ReplicationEdge{
		Source:      string(edge.Source),
		Target:      string(edge.Target),
		RequestedAt: edge.RequestedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}, {Name: "target"}},
		DoUpdates: clause.AssignmentColumns([]string{"requested_at"}),
	}).Create(&row).Error
}

func (r *EdgeRepository) MarkCompleted(ctx context.Context, edge domain.ReplicationEdge, mirrored int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ReplicationEdge{}).
		Where("source = ? AND target = ?", string(edge.Source), string(edge.Target)).
		Updates(map[string]any{
			"completed_at": at,
			"mirrored":     gorm.Expr("mirrored + ?", mirrored),
			"last_error":   "",
		}).Error
}

func (r *EdgeRepository) MarkFailed(ctx context.Context, edge domain.ReplicationEdge, cause error) error {
	return r.db.WithContext(ctx).
		Model(&models.ReplicationEdge{}).
		Where("source = ? AND target = ?", string(edge.Source), string(edge.Target)).
		Update("last_error", cause.Error()).Error
}

// Stale lists edges requested before cutoff that never completed after their
// latest request.
func (r *EdgeRepository) Stale(ctx context.Context, cutoff time.Time, limit int) ([]domain.ReplicationEdge, error) {
	var rows []models.ReplicationEdge
	err := r.db.WithContext(ctx).
		Where("requested_at < ? AND (completed_at IS NULL OR completed_at < requested_at)", cutoff).
		Order("requested_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	edges := make([]domain.ReplicationEdge, 0, len(rows))
	for _, row := range rows {
		edges = append(edges, domain.ReplicationEdge{
			Source:      domain.StoreID(row.Source),
			Target:      domain.StoreID(row.Target),
			RequestedAt: row.RequestedAt,
			CompletedAt: row.CompletedAt,
			Mirrored:    row.Mirrored,
			LastError:   row.LastError,
		})
	}
	return edges, nil
}
