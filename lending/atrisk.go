package lending

import (
	"context"
	"time"

	"equiplend/models"
)

// Repeat offenders are flagged after a single late return; first-time
// students get three strikes.
const (
	firstOffenderThreshold  = 3
	repeatOffenderThreshold = 1
)

// AtRiskStudent is one row of the escalation report.
type AtRiskStudent struct {
	StudentID           string `json:"studentId"`
	StudentNo           string `json:"studentNo"`
	Name                string `json:"name"`
	TotalLateReturns    int    `json:"totalLateReturns"`
	LateSinceSuspension int    `json:"lateSinceSuspension"`
	SuspensionCount     int    `json:"suspensionCount"`
	Threshold           int    `json:"threshold"`
}

// EvaluateAtRisk scans every student for a repeat late-return pattern.
// Overdue snapshots and lapsed suspensions are reconciled first so the
// counts are accurate. Read-only otherwise.
func (s *Service) EvaluateAtRisk(ctx context.Context) ([]AtRiskStudent, error) {
	if _, err := s.RefreshOverdue(ctx); err != nil {
		return nil, err
	}
	if _, err := s.ReconcileSuspensions(ctx); err != nil {
		return nil, err
	}

	students, err := s.repo.AllStudents(ctx)
	if err != nil {
		return nil, err
	}

	var flagged []AtRiskStudent
	for i := range students {
		row, atRisk, err := s.evaluateStudent(ctx, &students[i])
		if err != nil {
			return nil, err
		}
		if !atRisk {
			continue
		}
		dismissed, err := s.repo.WarningDismissed(ctx, row.StudentID, row.LateSinceSuspension)
		if err != nil {
			return nil, err
		}
		if !dismissed {
			flagged = append(flagged, row)
		}
	}
	return flagged, nil
}

// DismissWarning suppresses the current at-risk warning for a student.
// The dismissal is keyed by the late-return count at dismissal time, so
// the next late return re-triggers it.
func (s *Service) DismissWarning(ctx context.Context, studentID string) (int, error) {
	student, err := s.repo.FindStudentByID(ctx, studentID)
	if err != nil {
		return 0, err
	}
	row, _, err := s.evaluateStudent(ctx, student)
	if err != nil {
		return 0, err
	}
	if err := s.repo.DismissWarning(ctx, studentID, row.LateSinceSuspension, s.now()); err != nil {
		return 0, err
	}
	s.log.Info().
		Str("student", studentID).
		Int("lateCount", row.LateSinceSuspension).
		Msg("at-risk warning dismissed")
	return row.LateSinceSuspension, nil
}

func (s *Service) evaluateStudent(ctx context.Context, student *models.Student) (AtRiskStudent, bool, error) {
	returned, err := s.repo.ReturnedLoans(ctx, student.ID)
	if err != nil {
		return AtRiskStudent{}, false, err
	}
	entries, err := s.repo.BlacklistEntries(ctx, student.ID)
	if err != nil {
		return AtRiskStudent{}, false, err
	}

	total, since := lateCounts(returned, lastClosedSuspensionEnd(entries))
	threshold := firstOffenderThreshold
	if len(entries) > 0 {
		threshold = repeatOffenderThreshold
	}

	row := AtRiskStudent{
		StudentID:           student.ID,
		StudentNo:           student.StudentNo,
		Name:                student.Name,
		TotalLateReturns:    total,
		LateSinceSuspension: since,
		SuspensionCount:     len(entries),
		Threshold:           threshold,
	}
	return row, since >= threshold, nil
}

// lateCounts returns the all-time late-return count and the count of late
// returns after the given cut-off.
func lateCounts(returned []models.Loan, cutoff time.Time) (total, since int) {
	for i := range returned {
		if !returned[i].ReturnedLate() {
			continue
		}
		total++
		if returned[i].ReturnedAt.After(cutoff) {
			since++
		}
	}
	return total, since
}

// lastClosedSuspensionEnd finds the end date of the most recent inactive
// blacklist entry; the zero time ("since ever") if there is none.
func lastClosedSuspensionEnd(entries []models.BlacklistEntry) time.Time {
	var last time.Time
	for i := range entries {
		if entries[i].IsActive {
			continue
		}
		if entries[i].EndDate.After(last) {
			last = entries[i].EndDate
		}
	}
	return last
}
