package models

import "time"

const BlacklistTable = "sel_blacklist_entries"

// BlacklistEntry is the durable record of one suspension. Entries are
// flipped inactive when the suspension ends, never deleted.
type BlacklistEntry struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID string    `gorm:"type:uuid;index;not null" json:"studentId"`
	StartDate time.Time `gorm:"not null" json:"startDate"`
	EndDate   time.Time `gorm:"index;not null" json:"endDate"`
	Reason    string    `gorm:"size:255;not null" json:"reason"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BlacklistEntry) TableName() string { return BlacklistTable }
