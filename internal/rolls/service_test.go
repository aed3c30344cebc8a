package rolls

import (
	"context"
	"testing"
	"time"

	"github.com/rollmates/dicematch-backend/pkg/enums"
	pkgerrors "github.com/rollmates/dicematch-backend/pkg/errors"
)

func newHistoryService(t *testing.T, store Store, now time.Time) Service {
	t.Helper()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.(*service).now = func() time.Time { return now }
	return svc
}

func TestHistoryRequiresUser(t *testing.T) {
	svc := newHistoryService(t, NewMemoryStore(), time.Now())
	_, err := svc.History(context.Background(), HistoryParams{})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHistoryRejectsBadCursor(t *testing.T) {
	svc := newHistoryService(t, NewMemoryStore(), time.Now())
	_, err := svc.History(context.Background(), HistoryParams{UserID: "u1", Cursor: "garbage"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHistoryTodayOnlyFiltersAtMidnight(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2025, 8, 10, 15, 0, 0, 0, time.UTC)

	yesterday := newEvent("u1", enums.GenderMale, 2, now.Add(-20*time.Hour))
	today := newEvent("u1", enums.GenderMale, 5, now.Add(-time.Hour))
	if err := store.Append(ctx, yesterday); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, today); err != nil {
		t.Fatalf("append: %v", err)
	}

	svc := newHistoryService(t, store, now)
	result, err := svc.History(ctx, HistoryParams{UserID: "u1", TodayOnly: true})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != today.ID {
		t.Fatalf("expected only today's roll, got %d rows", len(result.Items))
	}
	if result.Cursor != "" {
		t.Fatal("expected no cursor on a single page")
	}
}
