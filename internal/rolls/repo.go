package rolls

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rollmates/dicematch-backend/pkg/db/models"
	"github.com/rollmates/dicematch-backend/pkg/pagination"
)

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a roll event store bound to the provided database.
func NewRepository(db *gorm.DB) Store {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Append(ctx context.Context, event *models.RollEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repositoryImpl) QueryCandidates(ctx context.Context, q CandidateQuery) ([]models.RollEvent, error) {
	query := r.db.WithContext(ctx).
		Model(&models.RollEvent{}).
		Where("dice_value = ?", q.DiceValue).
		Where("gender = ?", q.RequiredGender).
		Where("user_id <> ?", q.ExcludeUserID).
		Where("claimed = ?", false).
		Where("created_at >= ?", q.Since)
	if q.Limit > 0 {
		// Bound the scan to the freshest rolls when the pool is large.
		query = query.Order("created_at DESC").Limit(q.Limit)
	}

	var candidates []models.RollEvent
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *repositoryImpl) MarkClaimed(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RollEvent{}).
		Where("id = ? AND claimed = ?", id, false).
		UpdateColumn("claimed", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID string, params ListParams) ([]models.RollEvent, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.RollEvent{}).Where("user_id = ?", userID)
	if params.Since != nil {
		query = query.Where("created_at >= ?", *params.Since)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var events []models.RollEvent
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, nil, err
	}

	if len(events) > normalized {
		events = events[:normalized]
		last := events[normalized-1]
		return events, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return events, nil, nil
}
