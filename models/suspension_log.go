package models

import "time"

const SuspensionLogTable = "sel_suspension_log"

const (
	SuspensionActionSuspend   = "suspend"
	SuspensionActionUnsuspend = "unsuspend"
	SuspensionActionExpire    = "expire"
)

// SuspensionLog is the append-only audit trail of suspension actions.
type SuspensionLog struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID string    `gorm:"type:uuid;index;not null" json:"studentId"`
	Action    string    `gorm:"size:20;not null" json:"action"`
	Actor     string    `gorm:"size:120" json:"actor"`
	Reason    *string   `gorm:"size:255" json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (SuspensionLog) TableName() string { return SuspensionLogTable }
