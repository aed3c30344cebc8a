package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/rollmates/dicematch-backend/pkg/db/models"
	"github.com/rollmates/dicematch-backend/pkg/logger"
)

const (
	// EventTypeMatchCreated tags match pairing events on the wire.
	EventTypeMatchCreated = "match.created"

	publishTimeout = 5 * time.Second
)

// MatchCreatedEvent is the published payload for a new pairing.
type MatchCreatedEvent struct {
	MatchID        uuid.UUID `json:"matchId"`
	UserAID        string    `json:"userIdA"`
	UserBID        string    `json:"userIdB"`
	DiceValue      int       `json:"diceValue"`
	DistanceMeters *float64  `json:"distanceMeters,omitempty"`
	MatchedAt      time.Time `json:"matchedAt"`
}

// Publisher abstracts the topic publish call so tests can capture events.
type Publisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) error
}

// TopicPublisher adapts a Pub/Sub v2 publisher handle.
type TopicPublisher struct {
	topic *pubsub.Publisher
}

func NewTopicPublisher(topic *pubsub.Publisher) *TopicPublisher {
	return &TopicPublisher{topic: topic}
}

func (p *TopicPublisher) Publish(ctx context.Context, data []byte, attrs map[string]string) error {
	result := p.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	_, err := result.Get(ctx)
	return err
}

// Dispatcher fans match lifecycle events out to Pub/Sub without blocking the
// request path. A nil dispatcher or a dispatcher without a publisher drops
// events silently, which is the single-node mode.
type Dispatcher struct {
	pub    Publisher
	logger *logger.Logger
	wg     sync.WaitGroup
}

func NewDispatcher(pub Publisher, logg *logger.Logger) *Dispatcher {
	return &Dispatcher{pub: pub, logger: logg}
}

// MatchCreated publishes the pairing asynchronously. Publish failures are
// logged and dropped; the match is already durable.
func (d *Dispatcher) MatchCreated(ctx context.Context, match *models.Match) {
	if d == nil || d.pub == nil || match == nil {
		return
	}

	payload, err := json.Marshal(MatchCreatedEvent{
		MatchID:        match.ID,
		UserAID:        match.UserAID,
		UserBID:        match.UserBID,
		DiceValue:      match.DiceValue,
		DistanceMeters: match.DistanceMeters,
		MatchedAt:      match.MatchedAt,
	})
	if err != nil {
		if d.logger != nil {
			d.logger.Error(ctx, "marshaling match event", err)
		}
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		attrs := map[string]string{"event_type": EventTypeMatchCreated}
		if err := d.pub.Publish(pubCtx, payload, attrs); err != nil && d.logger != nil {
			d.logger.Error(pubCtx, "publishing match event", err)
		}
	}()
}

// Close waits for in-flight publishes to drain.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
