package match

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rollmates/dicematch-backend/pkg/db/models"
	"github.com/rollmates/dicematch-backend/pkg/pagination"
)

// Repository persists match records. Matches are append-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, match *models.Match) error
	ListByUser(ctx context.Context, userID string, params ListParams) ([]models.Match, *pagination.Cursor, error)
}

// ListParams configures match history pagination for one user.
type ListParams struct {
	Limit  int
	Cursor *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a match repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, match *models.Match) error {
	if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	if match.MatchedAt.IsZero() {
		match.MatchedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(match).Error
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID string, params ListParams) ([]models.Match, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID)
	if params.Cursor != nil {
		query = query.Where("(matched_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var matches []models.Match
	if err := query.Order("matched_at DESC, id DESC").Limit(limit).Find(&matches).Error; err != nil {
		return nil, nil, err
	}

	if len(matches) > normalized {
		matches = matches[:normalized]
		last := matches[normalized-1]
		return matches, &pagination.Cursor{CreatedAt: last.MatchedAt, ID: last.ID}, nil
	}
	return matches, nil, nil
}

// MemoryRepository is the in-process match ledger used by single-node
// deployments and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	matches []models.Match
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) WithTx(tx *gorm.DB) Repository {
	return r
}

func (r *MemoryRepository) Create(ctx context.Context, match *models.Match) error {
	if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	if match.MatchedAt.IsZero() {
		match.MatchedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.matches = append(r.matches, *match)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string, params ListParams) ([]models.Match, *pagination.Cursor, error) {
	r.mu.RLock()
	var matches []models.Match
	for _, m := range r.matches {
		if m.UserAID == userID || m.UserBID == userID {
			matches = append(matches, m)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].MatchedAt.Equal(matches[j].MatchedAt) {
			return matches[i].MatchedAt.After(matches[j].MatchedAt)
		}
		return matches[i].ID.String() > matches[j].ID.String()
	})

	if params.Cursor != nil {
		cut := 0
		for cut < len(matches) {
			m := matches[cut]
			if m.MatchedAt.Before(params.Cursor.CreatedAt) ||
				(m.MatchedAt.Equal(params.Cursor.CreatedAt) && m.ID.String() < params.Cursor.ID.String()) {
				break
			}
			cut++
		}
		matches = matches[cut:]
	}

	normalized := pagination.NormalizeLimit(params.Limit)
	if len(matches) > normalized {
		matches = matches[:normalized]
		last := matches[normalized-1]
		return matches, &pagination.Cursor{CreatedAt: last.MatchedAt, ID: last.ID}, nil
	}
	return matches, nil, nil
}
