package models

import (
	"math"
	"time"
)

const LoanTable = "sel_loans"

const (
	LoanActive   = "active"
	LoanOverdue  = "overdue"
	LoanReturned = "returned"
)

type Loan struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID   string `gorm:"type:uuid;index;not null" json:"studentId"`
	EquipmentID string `gorm:"type:uuid;index;not null" json:"equipmentId"`

	BorrowedAt time.Time  `gorm:"index;not null" json:"borrowedAt"`
	DueAt      time.Time  `gorm:"index;not null" json:"dueAt"`
	ReturnedAt *time.Time `gorm:"index" json:"returnedAt,omitempty"`

	// IsOverdue and Status are persisted snapshots of OverdueAt/StatusAt,
	// kept for query convenience. The derivation is the source of truth.
	IsOverdue bool   `gorm:"not null;default:false" json:"isOverdue"`
	Status    string `gorm:"size:20;not null;default:'active'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Loan) TableName() string { return LoanTable }

// Open reports whether the loan has not been returned yet.
func (l Loan) Open() bool { return l.ReturnedAt == nil }

// OverdueAt derives the overdue flag from (due_at, returned_at, now).
func (l Loan) OverdueAt(now time.Time) bool {
	return l.ReturnedAt == nil && l.DueAt.Before(now)
}

// StatusAt derives the loan status from (due_at, returned_at, now).
func (l Loan) StatusAt(now time.Time) string {
	switch {
	case l.ReturnedAt != nil:
		return LoanReturned
	case l.DueAt.Before(now):
		return LoanOverdue
	default:
		return LoanActive
	}
}

// ReturnedLate reports whether a closed loan came back after its due time.
// Open loans are never late; they contribute nothing to the trust ratio.
func (l Loan) ReturnedLate() bool {
	return l.ReturnedAt != nil && l.ReturnedAt.After(l.DueAt)
}

// DefaultTrustScore is the neutral prior for students with no returned
// loans yet.
const DefaultTrustScore = 50.0

// TrustScore computes the 0-100 on-time ratio over the returned loans in
// the given history, rounded to one decimal. Open loans are ignored.
func TrustScore(loans []Loan) float64 {
	var returned, onTime int
	for i := range loans {
		if loans[i].ReturnedAt == nil {
			continue
		}
		returned++
		if !loans[i].ReturnedLate() {
			onTime++
		}
	}
	if returned == 0 {
		return DefaultTrustScore
	}
	score := 100 * float64(onTime) / float64(returned)
	return math.Round(score*10) / 10
}
