package match

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rollmates/dicematch-backend/internal/rolls"
	"github.com/rollmates/dicematch-backend/pkg/config"
	"github.com/rollmates/dicematch-backend/pkg/db/models"
	"github.com/rollmates/dicematch-backend/pkg/enums"
)

func testMatchConfig() config.MatchConfig {
	return config.MatchConfig{Horizon: 5 * time.Minute, CandidateLimit: 50}
}

func newResolver(store rolls.Store, matches Repository) *Resolver {
	ledger := NewLedger(store, matches, nil)
	return NewResolver(store, ledger, testMatchConfig(), nil, nil)
}

func seedRoll(t *testing.T, store rolls.Store, userID string, gender enums.Gender, dice int, lat, lon *float64, createdAt time.Time) *models.RollEvent {
	t.Helper()
	event := &models.RollEvent{
		UserID:    userID,
		Gender:    gender,
		DiceValue: dice,
		Lat:       lat,
		Lon:       lon,
		CreatedAt: createdAt,
	}
	if err := store.Append(context.Background(), event); err != nil {
		t.Fatalf("append: %v", err)
	}
	return event
}

func ptr(v float64) *float64 { return &v }

func TestResolvePicksNearestCandidate(t *testing.T) {
	ctx := context.Background()
	store := rolls.NewMemoryStore()
	matches := NewMemoryRepository()
	now := time.Now().UTC()

	near := seedRoll(t, store, "near", enums.GenderFemale, 4, ptr(39.91), ptr(116.41), now.Add(-time.Minute))
	seedRoll(t, store, "far", enums.GenderFemale, 4, ptr(31.23), ptr(121.47), now.Add(-time.Minute))
	submitter := seedRoll(t, store, "me", enums.GenderMale, 4, ptr(39.9042), ptr(116.4074), now)

	match, err := newResolver(store, matches).Resolve(ctx, submitter)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.UserBID != "near" {
		t.Fatalf("expected the nearest candidate, got %s", match.UserBID)
	}
	if match.DistanceMeters == nil || *match.DistanceMeters <= 0 {
		t.Fatal("expected a recorded distance")
	}

	// Both sides must be consumed.
	for _, id := range []uuid.UUID{submitter.ID, near.ID} {
		if ok, _ := store.MarkClaimed(ctx, id); ok {
			t.Fatal("expected roll to be already claimed")
		}
	}
}

func TestResolveEmptyPoolIsNoMatch(t *testing.T) {
	ctx := context.Background()
	store := rolls.NewMemoryStore()
	submitter := seedRoll(t, store, "me", enums.GenderMale, 2, nil, nil, time.Now().UTC())

	match, err := newResolver(store, NewMemoryRepository()).Resolve(ctx, submitter)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if match != nil {
		t.Fatal("expected no match")
	}

	// The roll stays in the pool for later arrivals.
	if ok, err := store.MarkClaimed(ctx, submitter.ID); err != nil || !ok {
		t.Fatal("expected the submitted roll to remain unclaimed")
	}
}

func TestResolveIgnoresSameGenderAndOtherDice(t *testing.T) {
	ctx := context.Background()
	store := rolls.NewMemoryStore()
	now := time.Now().UTC()

	seedRoll(t, store, "same-gender", enums.GenderMale, 3, nil, nil, now.Add(-time.Minute))
	seedRoll(t, store, "other-dice", enums.GenderFemale, 5, nil, nil, now.Add(-time.Minute))
	seedRoll(t, store, "expired", enums.GenderFemale, 3, nil, nil, now.Add(-6*time.Minute))
	submitter := seedRoll(t, store, "me", enums.GenderMale, 3, nil, nil, now)

	match, err := newResolver(store, NewMemoryRepository()).Resolve(ctx, submitter)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if match != nil {
		t.Fatalf("expected no match, got pairing with %s", match.UserBID)
	}
}

// staleStore replays a pre-claim candidate snapshot so the resolver sees a
// candidate that is already gone and must fall through to the next one.
type staleStore struct {
	rolls.Store
	snapshot []models.RollEvent
}

func (s *staleStore) QueryCandidates(ctx context.Context, q rolls.CandidateQuery) ([]models.RollEvent, error) {
	return s.snapshot, nil
}

func TestResolveFallsThroughOnClaimRaceLoss(t *testing.T) {
	ctx := context.Background()
	store := rolls.NewMemoryStore()
	matches := NewMemoryRepository()
	now := time.Now().UTC()

	nearest := seedRoll(t, store, "nearest", enums.GenderFemale, 6, ptr(39.905), ptr(116.408), now.Add(-time.Minute))
	second := seedRoll(t, store, "second", enums.GenderFemale, 6, ptr(39.95), ptr(116.45), now.Add(-time.Minute))
	submitter := seedRoll(t, store, "me", enums.GenderMale, 6, ptr(39.9042), ptr(116.4074), now)

	snapshot := []models.RollEvent{*nearest, *second}
	if ok, _ := store.MarkClaimed(ctx, nearest.ID); !ok {
		t.Fatal("setup claim failed")
	}

	match, err := newResolver(&staleStore{Store: store, snapshot: snapshot}, matches).Resolve(ctx, submitter)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if match == nil || match.UserBID != "second" {
		t.Fatalf("expected fallthrough to the second candidate, got %+v", match)
	}
}

func TestResolveStopsWhenOwnRollConsumed(t *testing.T) {
	ctx := context.Background()
	store := rolls.NewMemoryStore()
	matches := NewMemoryRepository()
	now := time.Now().UTC()

	seedRoll(t, store, "candidate", enums.GenderFemale, 1, nil, nil, now.Add(-time.Minute))
	submitter := seedRoll(t, store, "me", enums.GenderMale, 1, nil, nil, now)

	// A concurrent resolver matched our roll between append and resolve.
	if ok, _ := store.MarkClaimed(ctx, submitter.ID); !ok {
		t.Fatal("setup claim failed")
	}

	match, err := newResolver(store, matches).Resolve(ctx, submitter)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if match != nil {
		t.Fatal("expected no match when the own roll was consumed")
	}
}
