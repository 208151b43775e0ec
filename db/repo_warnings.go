package db

import (
	"context"
	"errors"
	"time"

	"equiplend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DismissWarning records that staff dismissed the at-risk warning at the
// given late-return count. Dismissing the same count twice is a no-op.
func (r *Repo) DismissWarning(ctx context.Context, studentID string, lateCount int, now time.Time) error {
	d := models.WarningDismissal{
		StudentID:   studentID,
		LateCount:   lateCount,
		DismissedAt: now,
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "late_count"}},
			DoNothing: true,
		}).
		Create(&d).Error
}

// WarningDismissed reports whether the warning for exactly this count was
// dismissed. A higher count is a new warning and is not suppressed.
func (r *Repo) WarningDismissed(ctx context.Context, studentID string, lateCount int) (bool, error) {
	var d models.WarningDismissal
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND late_count = ?", studentID, lateCount).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
