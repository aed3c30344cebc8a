package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rollmates/dicematch-backend/pkg/enums"
	"github.com/rollmates/dicematch-backend/pkg/types"
)

// RollEvent is one user's dice roll submission. Claimed flips false->true at
// most once, when the roll is consumed by a match.
type RollEvent struct {
	ID        uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string       `gorm:"type:text;not null;index" json:"userId"`
	Gender    enums.Gender `gorm:"not null" json:"gender"`
	DiceValue int          `gorm:"not null" json:"diceValue"`
	Lat       *float64     `gorm:"type:double precision" json:"lat,omitempty"`
	Lon       *float64     `gorm:"type:double precision" json:"lon,omitempty"`
	Claimed   bool         `gorm:"not null;default:false" json:"claimed"`
	CreatedAt time.Time    `gorm:"type:timestamptz;default:now()" json:"createdAt"`
}

func (RollEvent) TableName() string {
	return "roll_events"
}

// Location returns the roll's coordinates, or nil when the client submitted
// without location permission.
func (r *RollEvent) Location() *types.Location {
	if r.Lat == nil || r.Lon == nil {
		return nil
	}
	return &types.Location{Lat: *r.Lat, Lon: *r.Lon}
}
