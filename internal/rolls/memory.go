package rolls

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rollmates/dicematch-backend/pkg/db/models"
	"github.com/rollmates/dicematch-backend/pkg/pagination"
)

// memoryEvent keeps the immutable roll fields alongside a per-event claim
// flag, so claiming never takes a store-wide lock.
type memoryEvent struct {
	event   models.RollEvent
	claimed atomic.Bool
}

// MemoryStore is the in-process Store used by single-node deployments and
// tests. The map mutex guards membership only; the claimed transition is a
// per-event compare-and-swap.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*memoryEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[uuid.UUID]*memoryEvent)}
}

// WithTx is a no-op; the memory store has no transactions.
func (s *MemoryStore) WithTx(tx *gorm.DB) Store {
	return s
}

func (s *MemoryStore) Append(ctx context.Context, event *models.RollEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	entry := &memoryEvent{event: *event}
	entry.claimed.Store(event.Claimed)

	s.mu.Lock()
	s.events[event.ID] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) QueryCandidates(ctx context.Context, q CandidateQuery) ([]models.RollEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []models.RollEvent
	for _, entry := range s.events {
		e := entry.event
		if e.DiceValue != q.DiceValue ||
			e.Gender != q.RequiredGender ||
			e.UserID == q.ExcludeUserID ||
			e.CreatedAt.Before(q.Since) {
			continue
		}
		if entry.claimed.Load() {
			continue
		}
		candidates = append(candidates, e)
	}

	if q.Limit > 0 && len(candidates) > q.Limit {
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
		})
		candidates = candidates[:q.Limit]
	}
	return candidates, nil
}

func (s *MemoryStore) MarkClaimed(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.RLock()
	entry, ok := s.events[id]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return entry.claimed.CompareAndSwap(false, true), nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string, params ListParams) ([]models.RollEvent, *pagination.Cursor, error) {
	s.mu.RLock()
	var events []models.RollEvent
	for _, entry := range s.events {
		e := entry.event
		if e.UserID != userID {
			continue
		}
		if params.Since != nil && e.CreatedAt.Before(*params.Since) {
			continue
		}
		e.Claimed = entry.claimed.Load()
		events = append(events, e)
	}
	s.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.After(events[j].CreatedAt)
		}
		return events[i].ID.String() > events[j].ID.String()
	})

	if params.Cursor != nil {
		cut := 0
		for cut < len(events) {
			e := events[cut]
			if e.CreatedAt.Before(params.Cursor.CreatedAt) ||
				(e.CreatedAt.Equal(params.Cursor.CreatedAt) && e.ID.String() < params.Cursor.ID.String()) {
				break
			}
			cut++
		}
		events = events[cut:]
	}

	normalized := pagination.NormalizeLimit(params.Limit)
	if len(events) > normalized {
		events = events[:normalized]
		last := events[normalized-1]
		return events, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return events, nil, nil
}
