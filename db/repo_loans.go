package db

import (
	"context"
	"fmt"
	"time"

	"equiplend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateLoans lends one or more available items to a student in a single
// transaction. Either every item is borrowed or none is: no equipment may
// end up marked borrowed without a matching open loan.
//
// The availability check-then-act is a guarded UPDATE whose row count
// decides between "never available" and "lost a race"; the partial unique
// index on open loans backstops both.
func (r *Repo) CreateLoans(ctx context.Context, studentID string, equipmentIDs []string, duration time.Duration, now time.Time) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
			return err
		}

		// Lazy expiry before the suspension gate, so a lapsed suspension
		// never blocks a borrow.
		if student.IsBlacklisted && !student.SuspendedAt(now) {
			if err := expireSuspensionTx(tx, &student, now); err != nil {
				return err
			}
		}
		if student.SuspendedAt(now) {
			return ErrStudentSuspended
		}

		dueAt := now.Add(duration)
		for _, equipmentID := range equipmentIDs {
			var eq models.Equipment
			if err := tx.First(&eq, "id = ?", equipmentID).Error; err != nil {
				return err
			}
			if eq.Status != models.EquipmentAvailable {
				return fmt.Errorf("%w: %s is %s", ErrEquipmentUnavailable, eq.Code, eq.Status)
			}

			res := tx.Model(&models.Equipment{}).
				Where("id = ? AND status = ?", equipmentID, models.EquipmentAvailable).
				Update("status", models.EquipmentBorrowed)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrConflict
			}

			loan := models.Loan{
				ID:          uuid.NewString(),
				StudentID:   studentID,
				EquipmentID: equipmentID,
				BorrowedAt:  now,
				DueAt:       dueAt,
				Status:      models.LoanActive,
			}
			if err := tx.Create(&loan).Error; err != nil {
				return err
			}
			loans = append(loans, loan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loans, nil
}

// ReturnLoan closes the loan, frees the equipment and recomputes the
// student's trust score, all in one transaction. Returns the closed loan
// and the new score.
func (r *Repo) ReturnLoan(ctx context.Context, loanID string, now time.Time) (*models.Loan, float64, error) {
	var (
		loan  models.Loan
		score float64
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&loan, "id = ?", loanID).Error; err != nil {
			return err
		}
		if loan.ReturnedAt != nil {
			return ErrAlreadyReturned
		}

		if err := tx.Model(&models.Loan{}).
			Where("id = ?", loan.ID).
			Updates(map[string]any{
				"returned_at": now,
				"is_overdue":  false,
				"status":      models.LoanReturned,
			}).Error; err != nil {
			return err
		}
		loan.ReturnedAt = &now
		loan.IsOverdue = false
		loan.Status = models.LoanReturned

		if err := tx.Model(&models.Equipment{}).
			Where("id = ?", loan.EquipmentID).
			Update("status", models.EquipmentAvailable).Error; err != nil {
			return err
		}

		var err error
		score, err = recomputeTrustScoreTx(tx, loan.StudentID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return &loan, score, nil
}

// EditLoanDueDate moves the due time and re-derives overdue state against
// the current clock. A returned loan stays returned, but its lateness
// classification (and so the trust score) can still flip.
func (r *Repo) EditLoanDueDate(ctx context.Context, loanID string, newDueAt, now time.Time) (*models.Loan, float64, error) {
	var (
		loan  models.Loan
		score float64
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&loan, "id = ?", loanID).Error; err != nil {
			return err
		}

		loan.DueAt = newDueAt
		loan.IsOverdue = loan.OverdueAt(now)
		loan.Status = loan.StatusAt(now)

		if err := tx.Model(&models.Loan{}).
			Where("id = ?", loan.ID).
			Updates(map[string]any{
				"due_at":     newDueAt,
				"is_overdue": loan.IsOverdue,
				"status":     loan.Status,
			}).Error; err != nil {
			return err
		}

		var err error
		score, err = recomputeTrustScoreTx(tx, loan.StudentID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return &loan, score, nil
}

// DeleteLoan hard-removes a loan (admin override). An open loan releases
// its equipment; a returned one changes the historical ratio, so the trust
// score is recomputed either way.
func (r *Repo) DeleteLoan(ctx context.Context, loanID string) (float64, error) {
	var score float64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loan models.Loan
		if err := tx.First(&loan, "id = ?", loanID).Error; err != nil {
			return err
		}

		if loan.ReturnedAt == nil {
			if err := tx.Model(&models.Equipment{}).
				Where("id = ?", loan.EquipmentID).
				Update("status", models.EquipmentAvailable).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Loan{}, "id = ?", loan.ID).Error; err != nil {
			return err
		}

		var err error
		score, err = recomputeTrustScoreTx(tx, loan.StudentID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}

// RefreshOverdue re-derives the persisted overdue snapshot of every open
// loan. Run before any aggregate read that depends on overdue state.
func (r *Repo) RefreshOverdue(ctx context.Context, now time.Time) (int64, error) {
	var flagged int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Loan{}).
			Where("returned_at IS NULL AND due_at < ? AND status <> ?", now, models.LoanOverdue).
			Updates(map[string]any{"is_overdue": true, "status": models.LoanOverdue})
		if res.Error != nil {
			return res.Error
		}
		flagged = res.RowsAffected

		// Due dates can move forward; flip stale overdue marks back.
		return tx.Model(&models.Loan{}).
			Where("returned_at IS NULL AND due_at >= ? AND status <> ?", now, models.LoanActive).
			Updates(map[string]any{"is_overdue": false, "status": models.LoanActive}).Error
	})
	return flagged, err
}

func (r *Repo) FindLoanByID(ctx context.Context, id string) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) ListLoans(ctx context.Context, studentID, equipmentID, status string) ([]models.Loan, error) {
	q := r.DB.WithContext(ctx).Model(&models.Loan{}).Order("borrowed_at DESC")
	if studentID != "" {
		q = q.Where("student_id = ?", studentID)
	}
	if equipmentID != "" {
		q = q.Where("equipment_id = ?", equipmentID)
	}
	switch status {
	case "open":
		q = q.Where("returned_at IS NULL")
	case models.LoanReturned:
		q = q.Where("returned_at IS NOT NULL")
	case models.LoanActive, models.LoanOverdue:
		q = q.Where("returned_at IS NULL AND status = ?", status)
	}
	var ls []models.Loan
	if err := q.Find(&ls).Error; err != nil {
		return nil, err
	}
	return ls, nil
}

// ReturnedLoans is the trust-score input: every closed loan of a student.
func (r *Repo) ReturnedLoans(ctx context.Context, studentID string) ([]models.Loan, error) {
	var ls []models.Loan
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND returned_at IS NOT NULL", studentID).
		Order("returned_at").
		Find(&ls).Error
	return ls, err
}

// recomputeTrustScoreTx reloads the student's closed loans, recomputes the
// on-time ratio and persists it, inside the caller's transaction.
func recomputeTrustScoreTx(tx *gorm.DB, studentID string) (float64, error) {
	var returned []models.Loan
	if err := tx.
		Where("student_id = ? AND returned_at IS NOT NULL", studentID).
		Find(&returned).Error; err != nil {
		return 0, err
	}
	score := models.TrustScore(returned)
	if err := tx.Model(&models.Student{}).
		Where("id = ?", studentID).
		Update("trust_score", score).Error; err != nil {
		return 0, err
	}
	return score, nil
}
