package db

import (
	"context"
	"testing"
	"time"

	"equiplend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBorrowReturnHappyPath(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedStudent(t, r, "S001")
	eq := seedEquipment(t, r, "BALL-01")

	loans, err := r.CreateLoans(ctx, student.ID, []string{eq.ID}, 60*time.Minute, baseTime)
	require.NoError(t, err)
	require.Len(t, loans, 1)

	loan := loans[0]
	assert.Equal(t, baseTime, loan.BorrowedAt)
	assert.Equal(t, baseTime.Add(60*time.Minute), loan.DueAt)
	assert.Equal(t, models.LoanActive, loan.Status)
	assert.Nil(t, loan.ReturnedAt)

	got, err := r.FindEquipmentByID(ctx, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EquipmentBorrowed, got.Status)

	// Return 30 minutes in: on time, equipment freed, score recomputed
	// over the single on-time loan.
	returnAt := baseTime.Add(30 * time.Minute)
	returned, score, err := r.ReturnLoan(ctx, loan.ID, returnAt)
	require.NoError(t, err)
	assert.Equal(t, models.LoanReturned, returned.Status)
	require.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, returnAt, *returned.ReturnedAt)
	assert.False(t, returned.IsOverdue)
	assert.Equal(t, 100.0, score)

	got, err = r.FindEquipmentByID(ctx, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EquipmentAvailable, got.Status)

	updated, err := r.FindStudentByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.TrustScore)
}

func TestCreateLoansMultiItemAtomic(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedStudent(t, r, "S001")
	a := seedEquipment(t, r, "A")
	b := seedEquipment(t, r, "B")

	// Second item is in repair: the whole creation is rejected and the
	// first item must not be left marked borrowed.
	_, err := r.SetEquipmentStatus(ctx, b.ID, models.EquipmentRepair)
	require.NoError(t, err)

	_, err = r.CreateLoans(ctx, student.ID, []string{a.ID, b.ID}, time.Hour, baseTime)
	require.ErrorIs(t, err, ErrEquipmentUnavailable)

	got, err := r.FindEquipmentByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EquipmentAvailable, got.Status)

	open, err := r.ListLoans(ctx, student.ID, "", "open")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestDoubleBorrowRejected(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	s1 := seedStudent(t, r, "S001")
	s2 := seedStudent(t, r, "S002")
	eq := seedEquipment(t, r, "NET-01")

	_, err := r.CreateLoans(ctx, s1.ID, []string{eq.ID}, time.Hour, baseTime)
	require.NoError(t, err)

	_, err = r.CreateLoans(ctx, s2.ID, []string{eq.ID}, time.Hour, baseTime.Add(time.Minute))
	require.ErrorIs(t, err, ErrEquipmentUnavailable)

	// Exactly one open loan references the item.
	open, err := r.ListLoans(ctx, "", eq.ID, "open")
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestBorrowBlockedWhileSuspended(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedStudent(t, r, "S001")
	eq := seedEquipment(t, r, "BAT-01")

	_, _, err := r.SuspendStudent(ctx, student.ID, baseTime.Add(24*time.Hour), "rough handling", "coach", baseTime)
	require.NoError(t, err)

	_, err = r.CreateLoans(ctx, student.ID, []string{eq.ID}, time.Hour, baseTime.Add(time.Hour))
	require.ErrorIs(t, err, ErrStudentSuspended)

	// Past the end date the borrow goes through and the suspension is
	// lazily expired on the way.
	loans, err := r.CreateLoans(ctx, student.ID, []string{eq.ID}, time.Hour, baseTime.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Len(t, loans, 1)

	updated, err := r.FindStudentByID(ctx, student.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsBlacklisted)
	assert.Nil(t, updated.BlacklistEndDate)
}

func TestReturnLoanTwice(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedStudent(t, r, "S001")
	eq := seedEquipment(t, r, "X")

	loans, err := r.CreateLoans(ctx, student.ID, []string{eq.ID}, time.Hour, baseTime)
	require.NoError(t, err)

	_, _, err = r.ReturnLoan(ctx, loans[0].ID, baseTime.Add(time.Minute))
	require.NoError(t, err)

	_, _, err = r.ReturnLoan(ctx, loans[0].ID, baseTime.Add(2*time.Minute))
	require.ErrorIs(t, err, ErrAlreadyReturned)
}

func TestReturnLoanNotFound(t *testing.T) {
	r := newTestRepo(t)
	_, _, err := r.ReturnLoan(context.Background(), "no-such-loan", baseTime)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRefreshOverdue(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedStudent(t, r, "S001")
	eq := seedEquipment(t, r, "X")

	loans, err := r.CreateLoans(ctx, student.ID, []string{eq.ID}, 60*time.Minute, baseTime)
	require.NoError(t, err)

	// 30 minutes in: nothing overdue.
	n, err := r.RefreshOverdue(ctx, baseTime.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, n)

	// 90 minutes in: flagged.
	n, err = r.RefreshOverdue(ctx, baseTime.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := r.FindLoanByID(ctx, loans[0].ID)
	require.NoError(t, err)
	assert.True(t, got.IsOverdue)
	assert.Equal(t, models.LoanOverdue, got.Status)

	// A due-date extension flips the snapshot back on the next pass.
	_, _, err = r.EditLoanDueDate(ctx, loans[0].ID, baseTime.Add(3*time.Hour), baseTime.Add(90*time.Minute))
	require.NoError(t, err)
	got, err = r.FindLoanByID(ctx, loans[0].ID)
	require.NoError(t, err)
	assert.False(t, got.IsOverdue)
	assert.Equal(t, models.LoanActive, got.Status)
}

func TestEditDueDateFlipsLateness(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedStudent(t, r, "S001")
	eq := seedEquipment(t, r, "X")

	loans, err := r.CreateLoans(ctx, student.ID, []string{eq.ID}, 60*time.Minute, baseTime)
	require.NoError(t, err)

	// Returned 2 hours in: late, score drops to 0.
	_, score, err := r.ReturnLoan(ctx, loans[0].ID, baseTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	// Extending the due date past the return reclassifies it on time.
	loan, score, err := r.EditLoanDueDate(ctx, loans[0].ID, baseTime.Add(3*time.Hour), baseTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.LoanReturned, loan.Status)
	assert.Equal(t, 100.0, score)
}

func TestDeleteOpenLoan(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedStudent(t, r, "S001")
	eq := seedEquipment(t, r, "X")

	loans, err := r.CreateLoans(ctx, student.ID, []string{eq.ID}, time.Hour, baseTime)
	require.NoError(t, err)

	// Deleting an open loan frees the equipment and must not move the
	// score: open loans are not part of the ratio.
	score, err := r.DeleteLoan(ctx, loans[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTrustScore, score)

	got, err := r.FindEquipmentByID(ctx, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EquipmentAvailable, got.Status)

	_, err = r.FindLoanByID(ctx, loans[0].ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteReturnedLoanRecomputesScore(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedStudent(t, r, "S001")
	eq := seedEquipment(t, r, "X")

	// One on-time, one late return: score 50.
	first, err := r.CreateLoans(ctx, student.ID, []string{eq.ID}, time.Hour, baseTime)
	require.NoError(t, err)
	_, _, err = r.ReturnLoan(ctx, first[0].ID, baseTime.Add(30*time.Minute))
	require.NoError(t, err)

	second, err := r.CreateLoans(ctx, student.ID, []string{eq.ID}, time.Hour, baseTime.Add(time.Hour))
	require.NoError(t, err)
	_, score, err := r.ReturnLoan(ctx, second[0].ID, baseTime.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 50.0, score)

	// Dropping the late loan leaves a perfect record.
	score, err = r.DeleteLoan(ctx, second[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)
}

func TestEquipmentLoanConsistency(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedStudent(t, r, "S001")
	items := []*models.Equipment{
		seedEquipment(t, r, "A"),
		seedEquipment(t, r, "B"),
		seedEquipment(t, r, "C"),
	}

	loans, err := r.CreateLoans(ctx, student.ID,
		[]string{items[0].ID, items[1].ID, items[2].ID}, time.Hour, baseTime)
	require.NoError(t, err)
	require.Len(t, loans, 3)

	_, _, err = r.ReturnLoan(ctx, loans[1].ID, baseTime.Add(time.Minute))
	require.NoError(t, err)

	// borrowed iff exactly one open loan references the item.
	for _, it := range items {
		eq, err := r.FindEquipmentByID(ctx, it.ID)
		require.NoError(t, err)
		open, err := r.ListLoans(ctx, "", it.ID, "open")
		require.NoError(t, err)
		if eq.Status == models.EquipmentBorrowed {
			assert.Len(t, open, 1)
		} else {
			assert.Empty(t, open)
		}
	}
}

func TestSetEquipmentStatusGuards(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedStudent(t, r, "S001")
	eq := seedEquipment(t, r, "X")

	_, err := r.CreateLoans(ctx, student.ID, []string{eq.ID}, time.Hour, baseTime)
	require.NoError(t, err)

	// Borrowed items cannot be retagged while the loan is open.
	_, err = r.SetEquipmentStatus(ctx, eq.ID, models.EquipmentLost)
	require.ErrorIs(t, err, ErrEquipmentUnavailable)

	// Nor can staff hand-set the borrowed status.
	free := seedEquipment(t, r, "Y")
	_, err = r.SetEquipmentStatus(ctx, free.ID, models.EquipmentBorrowed)
	require.ErrorIs(t, err, ErrEquipmentUnavailable)
}

func TestListEquipmentWithCurrentLoan(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	student := seedStudent(t, r, "S001")
	a := seedEquipment(t, r, "A")
	seedEquipment(t, r, "B")

	loans, err := r.CreateLoans(ctx, student.ID, []string{a.ID}, 60*time.Minute, baseTime)
	require.NoError(t, err)
	require.Len(t, loans, 1)

	res, err := r.ListEquipmentWithCurrentLoan(ctx, EquipmentQuery{}, baseTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	byCode := map[string]EquipmentRow{}
	for _, row := range res.Items {
		byCode[row.Code] = row
	}
	require.NotNil(t, byCode["A"].LoanID)
	assert.Equal(t, student.ID, *byCode["A"].BorrowerID)
	assert.True(t, byCode["A"].Overdue)
	assert.Nil(t, byCode["B"].LoanID)
	assert.False(t, byCode["B"].Overdue)

	// Status filter narrows to items with an open loan.
	open, err := r.ListEquipmentWithCurrentLoan(ctx, EquipmentQuery{Status: "open"}, baseTime)
	require.NoError(t, err)
	assert.Equal(t, int64(1), open.Total)
}
