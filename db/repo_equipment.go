package db

import (
	"context"
	"strings"
	"time"

	"equiplend/models"

	"gorm.io/gorm"
)

func (r *Repo) CreateEquipment(ctx context.Context, e *models.Equipment) error {
	if e.Status == "" {
		e.Status = models.EquipmentAvailable
	}
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *Repo) FindEquipmentByID(ctx context.Context, id string) (*models.Equipment, error) {
	var e models.Equipment
	if err := r.DB.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// SetEquipmentStatus is the staff-facing status change (repair, lost,
// damaged, ...). The borrowed status is owned by the loan lifecycle and
// cannot be entered or left this way, and items with an open loan cannot
// be retagged out from under the loan.
func (r *Repo) SetEquipmentStatus(ctx context.Context, id, status string) (*models.Equipment, error) {
	var e models.Equipment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&e, "id = ?", id).Error; err != nil {
			return err
		}
		if e.Status == models.EquipmentBorrowed || status == models.EquipmentBorrowed {
			return ErrEquipmentUnavailable
		}
		if err := tx.Model(&models.Equipment{}).
			Where("id = ?", id).
			Update("status", status).Error; err != nil {
			return err
		}
		e.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EquipmentRow is one equipment item joined with its current open loan,
// if any. Overdue is computed in SQL against the caller's clock.
type EquipmentRow struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	LoanID       *string    `json:"loanId,omitempty"`
	BorrowerID   *string    `json:"borrowerId,omitempty"`
	BorrowerNo   *string    `json:"borrowerNo,omitempty"`
	BorrowerName *string    `json:"borrowerName,omitempty"`
	BorrowedAt   *time.Time `json:"borrowedAt,omitempty"`
	DueAt        *time.Time `json:"dueAt,omitempty"`
	Overdue      bool       `json:"overdue"`
}

type EquipmentQuery struct {
	Q        string // code/name substring
	Category string
	Status   string // "", "open", "available", "overdue", or a stored status
	Page     int
	Size     int
}

type PagedEquipment struct {
	Total int64          `json:"total"`
	Items []EquipmentRow `json:"items"`
}

// ListEquipmentWithCurrentLoan returns the staff inventory view. The
// partial unique index guarantees at most one open loan per item, so a
// plain LEFT JOIN on returned_at IS NULL is enough.
func (r *Repo) ListEquipmentWithCurrentLoan(ctx context.Context, q EquipmentQuery, now time.Time) (*PagedEquipment, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}
	offset := (q.Page - 1) * q.Size

	db := r.DB.WithContext(ctx)

	base := db.
		Table(models.EquipmentTable+" e").
		Joins("LEFT JOIN "+models.LoanTable+" ol ON ol.equipment_id = e.id AND ol.returned_at IS NULL").
		Joins("LEFT JOIN "+models.StudentTable+" s ON s.id = ol.student_id")

	if v := strings.TrimSpace(q.Q); v != "" {
		pat := "%" + strings.ToLower(v) + "%"
		base = base.Where("LOWER(e.code) LIKE ? OR LOWER(e.name) LIKE ?", pat, pat)
	}
	if q.Category != "" {
		base = base.Where("e.category = ?", q.Category)
	}
	switch q.Status {
	case "open":
		base = base.Where("ol.id IS NOT NULL")
	case "available":
		base = base.Where("e.status = ?", models.EquipmentAvailable)
	case "overdue":
		base = base.Where("ol.due_at IS NOT NULL AND ol.due_at < ?", now)
	case "":
		// all
	default:
		base = base.Where("e.status = ?", q.Status)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Distinct("e.id").Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []EquipmentRow
	if err := base.
		Select(`
			e.id, e.code, e.name, e.category, e.status, e.created_at, e.updated_at,
			ol.id          AS loan_id,
			ol.student_id  AS borrower_id,
			ol.borrowed_at,
			ol.due_at,
			s.student_no   AS borrower_no,
			s.name         AS borrower_name,
			CASE WHEN ol.due_at IS NOT NULL AND ol.due_at < ? THEN TRUE ELSE FALSE END AS overdue
		`, now).
		Order("e.created_at DESC").
		Offset(offset).
		Limit(q.Size).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return &PagedEquipment{Total: total, Items: rows}, nil
}
