package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rollmates/dicematch-backend/pkg/db/models"
)

type capturePublisher struct {
	mu    sync.Mutex
	data  [][]byte
	attrs []map[string]string
	err   error
}

func (p *capturePublisher) Publish(ctx context.Context, data []byte, attrs map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.data = append(p.data, data)
	p.attrs = append(p.attrs, attrs)
	return nil
}

func TestDispatcherPublishesMatchCreated(t *testing.T) {
	pub := &capturePublisher{}
	d := NewDispatcher(pub, nil)

	distance := 1234.5
	match := &models.Match{
		ID:             uuid.New(),
		UserAID:        "him",
		UserBID:        "her",
		DiceValue:      6,
		DistanceMeters: &distance,
		MatchedAt:      time.Now().UTC(),
	}
	d.MatchCreated(context.Background(), match)
	d.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.data) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(pub.data))
	}
	if pub.attrs[0]["event_type"] != EventTypeMatchCreated {
		t.Fatalf("expected match.created attribute, got %v", pub.attrs[0])
	}

	var event MatchCreatedEvent
	if err := json.Unmarshal(pub.data[0], &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if event.MatchID != match.ID || event.UserAID != "him" || event.UserBID != "her" {
		t.Fatalf("unexpected payload: %+v", event)
	}
	if event.DistanceMeters == nil || *event.DistanceMeters != distance {
		t.Fatal("expected distance in payload")
	}
}

func TestDispatcherIsNilSafe(t *testing.T) {
	var d *Dispatcher
	d.MatchCreated(context.Background(), &models.Match{ID: uuid.New()})
	d.Close()

	empty := NewDispatcher(nil, nil)
	empty.MatchCreated(context.Background(), &models.Match{ID: uuid.New()})
	empty.Close()
}

func TestDispatcherSwallowsPublishErrors(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	d := NewDispatcher(pub, nil)
	d.MatchCreated(context.Background(), &models.Match{ID: uuid.New()})
	d.Close()
}
