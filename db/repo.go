package db

import (
	"context"
	"errors"
	"strings"

	"equiplend/models"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Sentinel errors surfaced by the transactional operations. Record
// lookups that miss return gorm.ErrRecordNotFound unchanged.
var (
	ErrEquipmentUnavailable = errors.New("equipment not available")
	ErrStudentSuspended     = errors.New("student is suspended")
	ErrAlreadyReturned      = errors.New("loan already returned")
	ErrConflict             = errors.New("concurrent update conflict")
)

// Students

func (r *Repo) CreateStudent(ctx context.Context, s *models.Student) error {
	if s.TrustScore == 0 {
		s.TrustScore = models.DefaultTrustScore
	}
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *Repo) FindStudentByID(ctx context.Context, id string) (*models.Student, error) {
	var s models.Student
	if err := r.DB.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) FindStudentByNo(ctx context.Context, no string) (*models.Student, error) {
	var s models.Student
	if err := r.DB.WithContext(ctx).First(&s, "student_no = ?", no).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

type ListStudentsResult struct {
	Students []models.Student `json:"students"`
	Total    int64            `json:"total"`
}

func (r *Repo) ListStudents(ctx context.Context, q string, page, size int) (ListStudentsResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Student{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(student_no) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListStudentsResult{}, err
	}

	var students []models.Student
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&students).Error; err != nil {
		return ListStudentsResult{}, err
	}
	return ListStudentsResult{Students: students, Total: total}, nil
}

func (r *Repo) AllStudents(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.DB.WithContext(ctx).Order("student_no").Find(&students).Error
	return students, err
}
