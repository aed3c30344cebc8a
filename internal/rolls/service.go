package rolls

import (
	"context"
	"strings"
	"time"

	"github.com/rollmates/dicematch-backend/pkg/db/models"
	pkgerrors "github.com/rollmates/dicematch-backend/pkg/errors"
	"github.com/rollmates/dicematch-backend/pkg/pagination"
)

// Service exposes roll history reads to the API layer.
type Service interface {
	History(ctx context.Context, params HistoryParams) (*HistoryResult, error)
}

// HistoryParams configures the roll history listing. TodayOnly narrows the
// window to the current day, which backs the "today's rolls" panel.
type HistoryParams struct {
	UserID    string
	Limit     int
	Cursor    string
	TodayOnly bool
}

// HistoryResult wraps returned rolls and the cursor for the next page.
type HistoryResult struct {
	Items  []models.RollEvent `json:"items"`
	Cursor string             `json:"cursor"`
}

type service struct {
	store Store
	now   func() time.Time
}

// NewService wires the roll history dependencies.
func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "roll store required")
	}
	return &service{store: store, now: time.Now}, nil
}

func (s *service) History(ctx context.Context, params HistoryParams) (*HistoryResult, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := ListParams{Limit: pagination.NormalizeLimit(params.Limit)}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	if params.TodayOnly {
		now := s.now().UTC()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		query.Since = &midnight
	}

	rows, next, err := s.store.ListByUser(ctx, params.UserID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list roll history")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &HistoryResult{Items: rows, Cursor: cursor}, nil
}
