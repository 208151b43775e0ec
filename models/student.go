package models

import "time"

const StudentTable = "sel_students"

type Student struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	StudentNo string `gorm:"size:40;uniqueIndex;not null" json:"studentNo"`
	Name      string `gorm:"size:200;not null" json:"name"`
	ClassYear string `gorm:"size:40" json:"classYear"`
	House     string `gorm:"size:80" json:"house"`

	TrustScore float64 `gorm:"not null;default:50" json:"trustScore"`

	IsBlacklisted    bool       `gorm:"not null;default:false" json:"isBlacklisted"`
	BlacklistEndDate *time.Time `gorm:"index" json:"blacklistEndDate,omitempty"`
	BlacklistReason  *string    `gorm:"size:255" json:"blacklistReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Student) TableName() string { return StudentTable }

// SuspendedAt reports whether the student is suspended at the given
// instant. The stored flag alone is not trusted: an end date in the past
// means the suspension has lapsed even if no reconcile pass ran yet.
func (s Student) SuspendedAt(now time.Time) bool {
	if !s.IsBlacklisted {
		return false
	}
	if s.BlacklistEndDate != nil && !s.BlacklistEndDate.After(now) {
		return false
	}
	return true
}
