package domain

import (
	"time"
)

const (
	FirstDay = 1
	LastDay  = 17
)

// Challenge is the durable unlock record of one calendar day
type Challenge struct {
	Day              int        `gorm:"primaryKey;autoIncrement:false"`
	Unlocked         bool       `gorm:"not null;default:false"`
	DiscussionURL    *string    `gorm:"type:text"`
	DiscussionNumber *int
	UnlockedAt       *time.Time
	CreatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// IsCommitted reports whether the record satisfies the unlocked invariant:
// an unlocked day always carries its discussion and unlock time.
func (c *Challenge) IsCommitted() bool {
	return c != nil && c.Unlocked && c.DiscussionURL != nil && c.UnlockedAt != nil
}

// Discussion is the reference returned by the discussion-creation service
type Discussion struct {
	ID     string
	URL    string
	Number int
	Title  string
}

// ValidDay reports whether day is one of the calendar days
func ValidDay(day int) bool {
	return day >= FirstDay && day <= LastDay
}
