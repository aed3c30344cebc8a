package match

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
)

func setupMatchTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS matches (
  id TEXT PRIMARY KEY,
  roll_event_a_id TEXT NOT NULL UNIQUE,
  roll_event_b_id TEXT NOT NULL UNIQUE,
  user_a_id TEXT NOT NULL,
  user_b_id TEXT NOT NULL,
  dice_value INTEGER NOT NULL,
  distance_meters REAL,
  matched_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedMatch(t *testing.T, repo Repository, userA, userB string, matchedAt time.Time) *models.Match {
	t.Helper()
	m := &models.Match{
		RollEventAID: uuid.New(),
		RollEventBID: uuid.New(),
		UserAID:      userA,
		UserBID:      userB,
		DiceValue:    3,
		MatchedAt:    matchedAt,
	}
	require.NoError(t, repo.Create(context.Background(), m))
	return m
}

func TestRepositoryListByUserBothSides(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupMatchTestDB(t))
	now := time.Now().UTC()

	asA := seedMatch(t, repo, "him", "her", now.Add(-time.Minute))
	asB := seedMatch(t, repo, "her2", "him", now)
	seedMatch(t, repo, "someone", "else", now)

	page, cursor, err := repo.ListByUser(ctx, "him", ListParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, asB.ID, page[0].ID)
	assert.Equal(t, asA.ID, page[1].ID)
	assert.Nil(t, cursor)
}

func TestRepositoryListByUserPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupMatchTestDB(t))
	now := time.Now().UTC()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		m := seedMatch(t, repo, "him", "her", now.Add(time.Duration(i)*time.Second))
		ids = append(ids, m.ID)
	}

	page, cursor, err := repo.ListByUser(ctx, "him", ListParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
	require.NotNil(t, cursor)

	rest, next, err := repo.ListByUser(ctx, "him", ListParams{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)
	assert.Nil(t, next)
}

func TestRepositoryCreateRejectsReusedRoll(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupMatchTestDB(t))
	now := time.Now().UTC()

	first := seedMatch(t, repo, "him", "her", now)

	dup := &models.Match{
		RollEventAID: first.RollEventAID,
		RollEventBID: uuid.New(),
		UserAID:      "him",
		UserBID:      "her3",
		DiceValue:    3,
		MatchedAt:    now,
	}
	err := repo.Create(ctx, dup)
	require.Error(t, err, "a roll must back at most one match")
}
