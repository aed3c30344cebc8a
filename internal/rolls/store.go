package rolls

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rollmates/dicematch-backend/pkg/db/models"
	"github.com/rollmates/dicematch-backend/pkg/enums"
	"github.com/rollmates/dicematch-backend/pkg/pagination"
)

// CandidateQuery filters the unclaimed rolls eligible to pair with a new
// submission. Results are a snapshot at call time and carry no ordering
// guarantee; ranking happens in the resolver.
type CandidateQuery struct {
	DiceValue      int
	ExcludeUserID  string
	RequiredGender enums.Gender
	Since          time.Time
	Limit          int
}

// ListParams configures roll history pagination for one user.
type ListParams struct {
	Limit  int
	Cursor *pagination.Cursor
	Since  *time.Time
}

// Store is the append-only roll event log. MarkClaimed is the only mutation
// after append: an atomic false->true transition that exactly one concurrent
// caller observes as true.
type Store interface {
	WithTx(tx *gorm.DB) Store
	Append(ctx context.Context, event *models.RollEvent) error
	QueryCandidates(ctx context.Context, q CandidateQuery) ([]models.RollEvent, error)
	MarkClaimed(ctx context.Context, id uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID string, params ListParams) ([]models.RollEvent, *pagination.Cursor, error)
}
