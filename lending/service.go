package lending

import (
	"context"
	"errors"
	"strings"
	"time"

	"equiplend/db"
	"equiplend/models"

	"github.com/rs/zerolog"
)

// Input validation errors, surfaced before anything touches the store.
var (
	ErrNoEquipment      = errors.New("no equipment specified")
	ErrEndDateNotFuture = errors.New("suspension end date must be in the future")
	ErrEmptyReason      = errors.New("suspension reason must not be empty")
)

// Service is the loan and trust lifecycle engine. All multi-entity writes
// go through the repo's transactional operations; the service owns input
// validation, the clock, event publication and logging.
type Service struct {
	repo *db.Repo
	sink EventSink
	log  zerolog.Logger
	now  func() time.Time
}

type Option func(*Service)

// WithNow replaces the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo *db.Repo, sink EventSink, log zerolog.Logger, opts ...Option) *Service {
	if sink == nil {
		sink = NopSink{}
	}
	s := &Service{repo: repo, sink: sink, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Repo() *db.Repo { return s.repo }

// CreateLoans lends the given items to a student. The duration is clamped
// to the configured bounds; a zero duration means the configured default.
func (s *Service) CreateLoans(ctx context.Context, studentID string, equipmentIDs []string, durationMinutes int) ([]models.Loan, error) {
	if len(equipmentIDs) == 0 {
		return nil, ErrNoEquipment
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	minutes := settings.ClampDuration(durationMinutes)

	now := s.now()
	loans, err := s.repo.CreateLoans(ctx, studentID, equipmentIDs, time.Duration(minutes)*time.Minute, now)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("student", studentID).
		Int("items", len(loans)).
		Int("minutes", minutes).
		Msg("loans created")
	return loans, nil
}

// ReturnLoan closes a loan and republishes the student's recomputed trust
// score.
func (s *Service) ReturnLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	now := s.now()
	loan, score, err := s.repo.ReturnLoan(ctx, loanID, now)
	if err != nil {
		return nil, err
	}
	s.publishScore(ctx, loan.StudentID, score, now)
	s.log.Info().
		Str("loan", loan.ID).
		Str("student", loan.StudentID).
		Float64("trustScore", score).
		Msg("loan returned")
	return loan, nil
}

// EditLoanDueDate moves a loan's due time. The lateness classification of
// a returned loan can flip, so the score is republished too.
func (s *Service) EditLoanDueDate(ctx context.Context, loanID string, newDueAt time.Time) (*models.Loan, error) {
	now := s.now()
	loan, score, err := s.repo.EditLoanDueDate(ctx, loanID, newDueAt, now)
	if err != nil {
		return nil, err
	}
	s.publishScore(ctx, loan.StudentID, score, now)
	return loan, nil
}

// DeleteLoan is the admin override that hard-removes a loan.
func (s *Service) DeleteLoan(ctx context.Context, loanID string) error {
	loan, err := s.repo.FindLoanByID(ctx, loanID)
	if err != nil {
		return err
	}
	score, err := s.repo.DeleteLoan(ctx, loanID)
	if err != nil {
		return err
	}
	s.publishScore(ctx, loan.StudentID, score, s.now())
	s.log.Info().Str("loan", loanID).Str("student", loan.StudentID).Msg("loan deleted")
	return nil
}

// RefreshOverdue re-derives persisted overdue state for all open loans.
func (s *Service) RefreshOverdue(ctx context.Context) (int64, error) {
	return s.repo.RefreshOverdue(ctx, s.now())
}

// Suspend blacklists a student until endDate.
func (s *Service) Suspend(ctx context.Context, studentID string, endDate time.Time, reason, actor string) (*models.Student, error) {
	now := s.now()
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}
	if !endDate.After(now) {
		return nil, ErrEndDateNotFuture
	}

	student, penalty, err := s.repo.SuspendStudent(ctx, studentID, endDate, reason, actor, now)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, Event{
		Type:      EventSuspended,
		StudentID: student.ID,
		EndDate:   &endDate,
		Reason:    reason,
		At:        now,
	})
	if penalty {
		s.publishScore(ctx, student.ID, student.TrustScore, now)
	}
	s.log.Warn().
		Str("student", student.ID).
		Time("until", endDate).
		Bool("penalty", penalty).
		Msg("student suspended")
	return student, nil
}

// Unsuspend lifts a suspension early. The trust penalty stays.
func (s *Service) Unsuspend(ctx context.Context, studentID, actor string) (*models.Student, error) {
	now := s.now()
	student, err := s.repo.UnsuspendStudent(ctx, studentID, actor, now)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, Event{Type: EventUnsuspended, StudentID: student.ID, At: now})
	s.log.Info().Str("student", student.ID).Msg("student unsuspended")
	return student, nil
}

// ReconcileSuspensions expires every lapsed suspension. Idempotent;
// callable from any read path or a timer.
func (s *Service) ReconcileSuspensions(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.repo.ExpireSuspensions(ctx, now)
	if err != nil {
		return 0, err
	}
	for i := range expired {
		s.publish(ctx, Event{Type: EventUnsuspended, StudentID: expired[i].ID, At: now})
	}
	return len(expired), nil
}

// GetStudent lazy-expires the student's suspension before answering, so
// callers never act on a lapsed suspension.
func (s *Service) GetStudent(ctx context.Context, studentID string) (*models.Student, error) {
	now := s.now()
	student, expired, err := s.repo.ExpireStudentSuspension(ctx, studentID, now)
	if err != nil {
		return nil, err
	}
	if expired {
		s.publish(ctx, Event{Type: EventUnsuspended, StudentID: student.ID, At: now})
	}
	return student, nil
}

func (s *Service) publishScore(ctx context.Context, studentID string, score float64, at time.Time) {
	s.publish(ctx, Event{Type: EventTrustScore, StudentID: studentID, TrustScore: &score, At: at})
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if err := s.sink.Publish(ctx, ev); err != nil {
		s.log.Error().Err(err).Str("type", ev.Type).Msg("event publish failed")
	}
}
