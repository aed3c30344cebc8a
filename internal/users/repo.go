package users

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rollmates/dicematch-backend/pkg/db/models"
)

// Repository exposes the user directory consulted at roll submission time.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	RecordRoll(ctx context.Context, userID string, now time.Time) error
	IncrementMatchCount(ctx context.Context, userIDs ...string) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a user directory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) Upsert(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"nickname", "avatar_url", "gender", "country", "province", "city",
			"lat", "lon", "is_active", "updated_at",
		}),
	}).Create(user).Error
}

func (r *repositoryImpl) RecordRoll(ctx context.Context, userID string, now time.Time) error {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"total_rolls":    gorm.Expr("total_rolls + 1"),
			"today_rolls":    gorm.Expr("CASE WHEN last_roll_time >= ? THEN today_rolls + 1 ELSE 1 END", midnight),
			"last_roll_time": now,
			"updated_at":     now,
		}).Error
}

func (r *repositoryImpl) IncrementMatchCount(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_id IN ?", userIDs).
		Updates(map[string]any{
			"match_count": gorm.Expr("match_count + 1"),
			"updated_at":  time.Now().UTC(),
		}).Error
}
