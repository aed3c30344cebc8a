package models

import (
	"time"

	"github.com/google/uuid"
)

// Match pairs two claimed roll events. Immutable once created; the unique
// indexes on the roll event columns back the at-most-one-match-per-roll
// invariant at the storage layer.
type Match struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RollEventAID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_matches_roll_a" json:"rollEventIdA"`
	RollEventBID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_matches_roll_b" json:"rollEventIdB"`
	UserAID        string     `gorm:"type:text;not null;index" json:"userIdA"`
	UserBID        string     `gorm:"type:text;not null;index" json:"userIdB"`
	DiceValue      int        `gorm:"not null" json:"diceValue"`
	DistanceMeters *float64   `gorm:"type:double precision" json:"distanceMeters"`
	MatchedAt      time.Time  `gorm:"type:timestamptz;default:now()" json:"matchedAt"`
}

func (Match) TableName() string {
	return "matches"
}

// OtherUser returns the counterpart of the given user in this match.
func (m *Match) OtherUser(userID string) string {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}
