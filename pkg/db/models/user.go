package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rollmates/dicematch-backend/pkg/enums"
)

// User is the directory record consulted at roll submission time. UserID is
// the opaque client identifier (the mini-program's openid).
type User struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       string       `gorm:"type:text;not null;uniqueIndex" json:"userId"`
	Nickname     string       `gorm:"type:text" json:"nickname"`
	AvatarURL    string       `gorm:"type:text" json:"avatarUrl"`
	Gender       enums.Gender `gorm:"not null" json:"gender"`
	Country      string       `gorm:"type:text" json:"country,omitempty"`
	Province     string       `gorm:"type:text" json:"province,omitempty"`
	City         string       `gorm:"type:text" json:"city,omitempty"`
	Lat          *float64     `gorm:"type:double precision" json:"lat,omitempty"`
	Lon          *float64     `gorm:"type:double precision" json:"lon,omitempty"`
	IsActive     bool         `gorm:"not null;default:true" json:"isActive"`
	MatchCount   int          `gorm:"not null;default:0" json:"matchCount"`
	TotalRolls   int          `gorm:"not null;default:0" json:"totalRolls"`
	TodayRolls   int          `gorm:"not null;default:0" json:"todayRolls"`
	LastRollTime *time.Time   `gorm:"type:timestamptz" json:"lastRollTime,omitempty"`
	CreatedAt    time.Time    `gorm:"type:timestamptz;default:now()" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"type:timestamptz;default:now()" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
