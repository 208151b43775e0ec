package db

import (
	"context"
	"time"

	"equiplend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SuspendStudent puts a student on the blacklist. The 50% trust penalty is
// applied only on the not-suspended -> suspended edge; re-suspending an
// already-suspended student just updates the end date and reason.
// Returns the updated student and whether the penalty was applied.
func (r *Repo) SuspendStudent(ctx context.Context, studentID string, endDate time.Time, reason, actor string, now time.Time) (*models.Student, bool, error) {
	var (
		student models.Student
		penalty bool
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
			return err
		}

		// A lapsed suspension counts as not suspended, so suspending again
		// re-applies the penalty.
		if student.IsBlacklisted && !student.SuspendedAt(now) {
			if err := expireSuspensionTx(tx, &student, now); err != nil {
				return err
			}
		}

		if student.IsBlacklisted {
			// Edit of an ongoing suspension: no second penalty.
			student.BlacklistEndDate = &endDate
			student.BlacklistReason = &reason
			if err := tx.Model(&models.Student{}).
				Where("id = ?", student.ID).
				Updates(map[string]any{
					"blacklist_end_date": endDate,
					"blacklist_reason":   reason,
				}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.BlacklistEntry{}).
				Where("student_id = ? AND is_active", student.ID).
				Updates(map[string]any{"end_date": endDate, "reason": reason}).Error; err != nil {
				return err
			}
			return logSuspensionTx(tx, student.ID, models.SuspensionActionSuspend, actor, &reason)
		}

		penalty = true
		student.TrustScore = student.TrustScore * 0.5
		if student.TrustScore < 0 {
			student.TrustScore = 0
		}
		student.IsBlacklisted = true
		student.BlacklistEndDate = &endDate
		student.BlacklistReason = &reason

		if err := tx.Model(&models.Student{}).
			Where("id = ?", student.ID).
			Updates(map[string]any{
				"is_blacklisted":     true,
				"blacklist_end_date": endDate,
				"blacklist_reason":   reason,
				"trust_score":        student.TrustScore,
			}).Error; err != nil {
			return err
		}

		entry := models.BlacklistEntry{
			ID:        uuid.NewString(),
			StudentID: student.ID,
			StartDate: now,
			EndDate:   endDate,
			Reason:    reason,
			IsActive:  true,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return logSuspensionTx(tx, student.ID, models.SuspensionActionSuspend, actor, &reason)
	})
	if err != nil {
		return nil, false, err
	}
	return &student, penalty, nil
}

// UnsuspendStudent lifts a suspension early. The trust penalty is history
// and is not restored.
func (r *Repo) UnsuspendStudent(ctx context.Context, studentID, actor string, now time.Time) (*models.Student, error) {
	var student models.Student
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
			return err
		}
		if err := clearSuspensionTx(tx, &student); err != nil {
			return err
		}
		return logSuspensionTx(tx, student.ID, models.SuspensionActionUnsuspend, actor, nil)
	})
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// ExpireStudentSuspension applies lazy expiry to a single student: if the
// stored end date has passed, the suspension is closed exactly as an
// explicit unsuspend would, with an "expire" audit row. Reports whether
// anything changed.
func (r *Repo) ExpireStudentSuspension(ctx context.Context, studentID string, now time.Time) (*models.Student, bool, error) {
	var (
		student models.Student
		expired bool
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
			return err
		}
		if !student.IsBlacklisted || student.SuspendedAt(now) {
			return nil
		}
		expired = true
		return expireSuspensionTx(tx, &student, now)
	})
	if err != nil {
		return nil, false, err
	}
	return &student, expired, nil
}

// ExpireSuspensions is the reconcile pass: every blacklisted student whose
// end date has passed is transitioned back to not-suspended. Returns the
// students that changed.
func (r *Repo) ExpireSuspensions(ctx context.Context, now time.Time) ([]models.Student, error) {
	var expired []models.Student
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lapsed []models.Student
		if err := tx.
			Where("is_blacklisted AND blacklist_end_date <= ?", now).
			Find(&lapsed).Error; err != nil {
			return err
		}
		for i := range lapsed {
			if err := expireSuspensionTx(tx, &lapsed[i], now); err != nil {
				return err
			}
			expired = append(expired, lapsed[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

// expireSuspensionTx closes a lapsed suspension, reusing the same clearing
// logic as unsuspend so the one-active-entry invariant holds either way.
func expireSuspensionTx(tx *gorm.DB, student *models.Student, now time.Time) error {
	if err := clearSuspensionTx(tx, student); err != nil {
		return err
	}
	return logSuspensionTx(tx, student.ID, models.SuspensionActionExpire, "system", nil)
}

func clearSuspensionTx(tx *gorm.DB, student *models.Student) error {
	if err := tx.Model(&models.Student{}).
		Where("id = ?", student.ID).
		Updates(map[string]any{
			"is_blacklisted":     false,
			"blacklist_end_date": nil,
			"blacklist_reason":   nil,
		}).Error; err != nil {
		return err
	}
	student.IsBlacklisted = false
	student.BlacklistEndDate = nil
	student.BlacklistReason = nil

	return tx.Model(&models.BlacklistEntry{}).
		Where("student_id = ? AND is_active", student.ID).
		Update("is_active", false).Error
}

func logSuspensionTx(tx *gorm.DB, studentID, action, actor string, reason *string) error {
	return tx.Create(&models.SuspensionLog{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Action:    action,
		Actor:     actor,
		Reason:    reason,
	}).Error
}

func (r *Repo) BlacklistEntries(ctx context.Context, studentID string) ([]models.BlacklistEntry, error) {
	var entries []models.BlacklistEntry
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("end_date DESC").
		Find(&entries).Error
	return entries, err
}

func (r *Repo) SuspensionLog(ctx context.Context, studentID string) ([]models.SuspensionLog, error) {
	var rows []models.SuspensionLog
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
