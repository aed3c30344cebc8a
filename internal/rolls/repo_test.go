package rolls

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rollmates/dicematch-backend/pkg/db/models"
	"github.com/rollmates/dicematch-backend/pkg/enums"
)

func setupRollsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS roll_events (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  gender INTEGER NOT NULL,
  dice_value INTEGER NOT NULL,
  lat REAL,
  lon REAL,
  claimed INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedEvent(t *testing.T, store Store, userID string, gender enums.Gender, dice int, createdAt time.Time) *models.RollEvent {
	t.Helper()
	event := &models.RollEvent{
		UserID:    userID,
		Gender:    gender,
		DiceValue: dice,
		CreatedAt: createdAt,
	}
	require.NoError(t, store.Append(context.Background(), event))
	return event
}

func TestRepositoryQueryCandidates(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupRollsTestDB(t))
	now := time.Now().UTC()

	eligible := seedEvent(t, repo, "her", enums.GenderFemale, 4, now.Add(-time.Minute))
	seedEvent(t, repo, "other-dice", enums.GenderFemale, 5, now.Add(-time.Minute))
	seedEvent(t, repo, "same-gender", enums.GenderMale, 4, now.Add(-time.Minute))
	seedEvent(t, repo, "expired", enums.GenderFemale, 4, now.Add(-10*time.Minute))
	seedEvent(t, repo, "me", enums.GenderFemale, 4, now.Add(-time.Minute))

	got, err := repo.QueryCandidates(ctx, CandidateQuery{
		DiceValue:      4,
		ExcludeUserID:  "me",
		RequiredGender: enums.GenderFemale,
		Since:          now.Add(-5 * time.Minute),
		Limit:          10,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, eligible.ID, got[0].ID)
}

func TestRepositoryQueryCandidatesExcludesClaimed(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupRollsTestDB(t))
	now := time.Now().UTC()

	claimed := seedEvent(t, repo, "her", enums.GenderFemale, 2, now.Add(-time.Minute))
	ok, err := repo.MarkClaimed(ctx, claimed.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.QueryCandidates(ctx, CandidateQuery{
		DiceValue:      2,
		ExcludeUserID:  "me",
		RequiredGender: enums.GenderFemale,
		Since:          now.Add(-5 * time.Minute),
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepositoryMarkClaimedOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupRollsTestDB(t))

	event := seedEvent(t, repo, "her", enums.GenderFemale, 6, time.Now().UTC())

	first, err := repo.MarkClaimed(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.MarkClaimed(ctx, event.ID)
	require.NoError(t, err)
	assert.False(t, second, "claimed must flip exactly once")

	unknown, err := repo.MarkClaimed(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, unknown)
}

func TestRepositoryListByUserPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupRollsTestDB(t))
	now := time.Now().UTC()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		e := seedEvent(t, repo, "me", enums.GenderMale, 1+i, now.Add(time.Duration(i)*time.Second))
		ids = append(ids, e.ID)
	}
	seedEvent(t, repo, "someone-else", enums.GenderMale, 1, now)

	page, cursor, err := repo.ListByUser(ctx, "me", ListParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
	require.NotNil(t, cursor)

	rest, next, err := repo.ListByUser(ctx, "me", ListParams{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)
	assert.Nil(t, next)
}

func TestRepositoryListByUserSinceWindow(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupRollsTestDB(t))
	now := time.Now().UTC()

	seedEvent(t, repo, "me", enums.GenderMale, 1, now.Add(-48*time.Hour))
	recent := seedEvent(t, repo, "me", enums.GenderMale, 2, now)

	since := now.Add(-time.Hour)
	page, _, err := repo.ListByUser(ctx, "me", ListParams{Limit: 10, Since: &since})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, recent.ID, page[0].ID)
}
