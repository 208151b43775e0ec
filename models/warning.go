package models

import "time"

const WarningDismissalTable = "sel_warning_dismissals"

// WarningDismissal records that staff dismissed an at-risk warning for a
// student at a given late-return count. A new late return raises the count
// past the dismissed one, so the warning resurfaces.
type WarningDismissal struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	StudentID   string    `gorm:"type:uuid;uniqueIndex:idx_warning_student_count;not null" json:"studentId"`
	LateCount   int       `gorm:"uniqueIndex:idx_warning_student_count;not null" json:"lateCount"`
	DismissedAt time.Time `gorm:"not null" json:"dismissedAt"`
}

func (WarningDismissal) TableName() string { return WarningDismissalTable }
