package repository

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omunroe-com/shiftspace/internal/domain"
	"github.com/omunroe-com/shiftspace/internal/infra/database/models"
	"github.com/omunroe-com/shiftspace/internal/usecase"
)

var _ usecase.ShiftRepository = (*ShiftRepository)(nil)

// ShiftRepository keeps every store in one table keyed by (store, id).
type ShiftRepository struct {
	db *gorm.DB
}

func NewShiftRepository(db *gorm.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

func (r *ShiftRepository) Load(ctx context.Context, store domain.StoreID, id string) (*domain.Shift, error) {
	var doc models.ShiftDocument
	err := r.db.WithContext(ctx).
		Where("store = ? AND id = ?", string(store), id).
		Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError{Resource: "shift"}
	}
	if err != nil {
		return nil, err
	}
	return decodeShift(doc)
}

func (r *ShiftRepository) LoadMany(ctx context.Context, store domain.StoreID, ids []string) ([]*domain.Shift, error) {
	if len(ids) == 0 {
		return []*domain.Shift{}, nil
	}

	var docs []models.ShiftDocument
	err := r.db.WithContext(ctx).
		Where("store = ? AND id IN ?", string(store), ids).
		Find(&docs).Error
	if err != nil {
		return nil, err
	}

	shifts := make([]*domain.Shift, 0, len(docs))
	for _, doc := range docs {
		shift, err := decodeShift(doc)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, nil
}

// Exists reports which ids have a copy in store without reading bodies.
func (r *ShiftRepository) Exists(ctx context.Context, store domain.StoreID, ids []string) (map[string]bool, error) {
	result := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var found []string
	err := r.db.WithContext(ctx).
		Model(&models.ShiftDocument{}).
		Where("store = ? AND id IN ?", string(store), ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		result[id] = false
	}
	for _, id := range found {
		result[id] = true
	}
	return result, nil
}

func (r *ShiftRepository) Store(ctx context.Context, store domain.StoreID, shift *domain.Shift) error {
	body, err := json.Marshal(shift.Persisted())
	if err != nil {
		return err
	}

	doc := models.ShiftDocument{
		Store:     string(store),
		ID:        shift.ID,
		CreatedBy: shift.CreatedBy,
		Href:      shift.Href,
		Body:      body,
		Modified:  shift.Modified,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"created_by", "href", "body", "modified"}),
	}).Create(&doc).Error
}

func (r *ShiftRepository) Delete(ctx context.Context, store domain.StoreID, id string) error {
	result := r.db.WithContext(ctx).
		Where("store = ? AND id = ?", string(store), id).
		Delete(&models.ShiftDocument{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "shift"}
	}
	return nil
}

// Mirror copies every document of source into target in one statement and
// returns how many rows were written. Newer copies already in target are kept.
func (r *ShiftRepository) Mirror(ctx context.Context, source, target domain.StoreID) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
INSERT INTO shift_documents (store, id, created_by, href, body, modified)
SELECT ?, id, created_by, href, body, modified FROM shift_documents WHERE store = ?
ON CONFLICT (store, id) DO UPDATE SET
	created_by = EXCLUDED.created_by,
	href = EXCLUDED.href,
	body = EXCLUDED.body,
	modified = EXCLUDED.modified
WHERE shift_documents.modified <= EXCLUDED.modified`,
		string(target), string(source),
	)
	return result.RowsAffected, result.Error
}

func decodeShift(doc models.ShiftDocument) (*domain.Shift, error) {
	var shift domain.Shift
	if err := json.Unmarshal(doc.Body, &shift); err != nil {
		return nil, err
	}
	return &shift, nil
}
