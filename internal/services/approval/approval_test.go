// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package approval_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"

	"codeberg.org/skillnaav/portal/internal/config"
	"codeberg.org/skillnaav/portal/internal/models"
	"codeberg.org/skillnaav/portal/internal/obs"
	"codeberg.org/skillnaav/portal/internal/repository"
	"codeberg.org/skillnaav/portal/internal/services/application"
	"codeberg.org/skillnaav/portal/internal/services/approval"
	"codeberg.org/skillnaav/portal/internal/services/email"
	"codeberg.org/skillnaav/portal/internal/testutil"
)

type fakeNotifier struct {
	mu       sync.Mutex
	approved []email.Notice
	rejected []email.Notice
	err      error
}

func (f *fakeNotifier) NotifyApproved(_ context.Context, n email.Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, n)
	return f.err
}

func (f *fakeNotifier) NotifyRejected(_ context.Context, n email.Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, n)
	return f.err
}

func (f *fakeNotifier) SendPasswordReset(context.Context, email.Recipient, string, time.Duration) error {
	return nil
}

func newService(t *testing.T, policy string) (*approval.Service, *repository.Repository, *fakeNotifier) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	n := &fakeNotifier{}
	svc := approval.NewService(repo, n, obs.New(), &config.InternshipConfig{RejectPolicy: policy}, nil)
	return svc, repo, n
}

func TestApprovePartner(t *testing.T) {
	svc, repo, n := newService(t, config.RejectSoft)
	ctx := context.Background()
	p := testutil.NewTestPartner(t, repo, "p@acme.test", false)

	res, err := svc.Apply(ctx, approval.SubjectPartner, p.ID, approval.Approve, "")

	require.NoError(t, err)
	assert.True(t, res.Changed)
	got, err := repo.GetPartnerByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status())

	require.Len(t, n.approved, 1)
	assert.Equal(t, "p@acme.test", n.approved[0].To.Email)
	assert.Equal(t, "partner", n.approved[0].Kind)
}

func TestApprove_Idempotent(t *testing.T) {
	svc, repo, n := newService(t, config.RejectSoft)
	ctx := context.Background()
	p := testutil.NewTestPartner(t, repo, "p@acme.test", false)

	_, err := svc.Apply(ctx, approval.SubjectPartner, p.ID, approval.Approve, "")
	require.NoError(t, err)
	before, err := repo.GetPartnerByID(ctx, p.ID)
	require.NoError(t, err)

	res, err := svc.Apply(ctx, approval.SubjectPartner, p.ID, approval.Approve, "")

	require.NoError(t, err)
	assert.False(t, res.Changed)
	after, err := repo.GetPartnerByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version, "no write")
	assert.Len(t, n.approved, 1, "no second notification")
}

func TestRejectPartner(t *testing.T) {
	svc, repo, n := newService(t, config.RejectSoft)
	ctx := context.Background()
	p := testutil.NewTestPartner(t, repo, "p@acme.test", true)

	res, err := svc.Apply(ctx, approval.SubjectPartner, p.ID, approval.Reject, "Incomplete documents")

	require.NoError(t, err)
	assert.True(t, res.Changed)
	got, err := repo.GetPartnerByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status())

	require.Len(t, n.rejected, 1)
	assert.Equal(t, "Incomplete documents", n.rejected[0].Reason)

	// rejecting again changes nothing
	res, err = svc.Apply(ctx, approval.SubjectPartner, p.ID, approval.Reject, "")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Len(t, n.rejected, 1)
}

func TestApply_NotFound(t *testing.T) {
	svc, _, n := newService(t, config.RejectSoft)

	_, err := svc.Apply(context.Background(), approval.SubjectPartner, 999, approval.Reject, "")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, n.rejected)
}

func TestApply_UnknownSubjectOrTransition(t *testing.T) {
	svc, _, _ := newService(t, config.RejectSoft)
	ctx := context.Background()

	_, err := svc.Apply(ctx, approval.Subject("session"), 1, approval.Approve, "")
	assert.ErrorIs(t, err, approval.ErrUnknownSubject)

	_, err = svc.Apply(ctx, approval.SubjectAdmin, 1, approval.Transition("archive"), "")
	assert.ErrorIs(t, err, approval.ErrUnknownTransition)
}

func TestApproveAdmin(t *testing.T) {
	svc, repo, _ := newService(t, config.RejectSoft)
	ctx := context.Background()
	a, err := repo.CreateAdmin(ctx, &models.Admin{Account: models.Account{Name: "New", Email: "new@skillnaav.test", PasswordHash: "x"}})
	require.NoError(t, err)

	_, err = svc.Apply(ctx, approval.SubjectAdmin, a.ID, approval.Approve, "")

	require.NoError(t, err)
	got, err := repo.GetAdminByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Approved)
}

func TestApproveInternship_NotifiesOwner(t *testing.T) {
	svc, repo, n := newService(t, config.RejectSoft)
	ctx := context.Background()
	p := testutil.NewTestPartner(t, repo, "owner@acme.test", true)
	in := testutil.NewTestInternship(t, repo, p.ID, false)

	_, err := svc.Apply(ctx, approval.SubjectInternship, in.ID, approval.Approve, "")

	require.NoError(t, err)
	public, err := repo.ListApprovedInternships(ctx)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	require.Len(t, n.approved, 1)
	assert.Equal(t, "owner@acme.test", n.approved[0].To.Email)
	assert.Equal(t, in.Title, n.approved[0].Title)
}

func TestRejectInternship_Soft(t *testing.T) {
	svc, repo, n := newService(t, config.RejectSoft)
	ctx := context.Background()
	p := testutil.NewTestPartner(t, repo, "owner@acme.test", true)
	in := testutil.NewTestInternship(t, repo, p.ID, false)

	res, err := svc.Apply(ctx, approval.SubjectInternship, in.ID, approval.Reject, "")

	require.NoError(t, err)
	assert.False(t, res.Removed)
	_, err = repo.GetInternship(ctx, in.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	var deleted bool
	require.NoError(t, repo.DB().Get(&deleted, `SELECT deleted FROM internships WHERE id = ?`, in.ID))
	assert.True(t, deleted, "row kept for audit")
	assert.Len(t, n.rejected, 1)
}

func TestRejectInternship_Hard(t *testing.T) {
	svc, repo, n := newService(t, config.RejectHard)
	ctx := context.Background()
	p := testutil.NewTestPartner(t, repo, "owner@acme.test", true)
	in := testutil.NewTestInternship(t, repo, p.ID, false)

	res, err := svc.Apply(ctx, approval.SubjectInternship, in.ID, approval.Reject, "")

	require.NoError(t, err)
	assert.True(t, res.Removed)
	var count int
	require.NoError(t, repo.DB().Get(&count, `SELECT COUNT(*) FROM internships WHERE id = ?`, in.ID))
	assert.Zero(t, count)
	require.Len(t, n.rejected, 1)
	assert.Equal(t, "owner@acme.test", n.rejected[0].To.Email)
}

func TestApply_NotificationFailureKeepsDecision(t *testing.T) {
	svc, repo, n := newService(t, config.RejectSoft)
	ctx := context.Background()
	n.err = errors.New("smtp down")
	p := testutil.NewTestPartner(t, repo, "p@acme.test", false)

	res, err := svc.Apply(ctx, approval.SubjectPartner, p.ID, approval.Approve, "")

	require.NoError(t, err)
	assert.True(t, res.Changed)
	got, err := repo.GetPartnerByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Approved)
}

func TestApply_ConcurrentDecisions(t *testing.T) {
	svc, repo, _ := newService(t, config.RejectSoft)
	ctx := context.Background()
	p := testutil.NewTestPartner(t, repo, "p@acme.test", false)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr := approval.Approve
			if i%2 == 1 {
				tr = approval.Reject
			}
			_, errs[i] = svc.Apply(ctx, approval.SubjectPartner, p.ID, tr, "")
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, repository.ErrVersionConflict)
		}
	}
	got, err := repo.GetPartnerByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Reviewed)
}

func TestApply_ConcurrentApprovals(t *testing.T) {
	svc, repo, n := newService(t, config.RejectSoft)
	ctx := context.Background()
	p := testutil.NewTestPartner(t, repo, "p@acme.test", false)

	var wg sync.WaitGroup
	results := make([]*approval.Result, 8)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.Apply(ctx, approval.SubjectPartner, p.ID, approval.Approve, "")
		}()
	}
	wg.Wait()

	changed := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].Changed {
			changed++
		}
	}
	assert.Equal(t, 1, changed)
	assert.Len(t, n.approved, 1)
}

// racedService scripts an approve of partner 7 whose write loses against a
// decision that leaves the row as winner describes.
func racedService(t *testing.T, winnerApproved bool) (*approval.Service, *fakeNotifier, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	approvalCols := []string{"approved", "reviewed", "version"}
	mock.ExpectQuery("SELECT approved, reviewed, version FROM partners").
		WillReturnRows(sqlmock.NewRows(approvalCols).AddRow(false, false, 1))
	mock.ExpectQuery("SELECT \\* FROM partners").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(7, "Acme", "p@acme.test"))
	mock.ExpectExec("UPDATE partners SET").WillReturnResult(sqlmock.NewResult(0, 0))
	for range 2 {
		mock.ExpectQuery("SELECT approved, reviewed, version FROM partners").
			WillReturnRows(sqlmock.NewRows(approvalCols).AddRow(winnerApproved, true, 2))
	}

	n := &fakeNotifier{}
	repo := repository.New(sqlx.NewDb(mockDB, "sqlite"))
	return approval.NewService(repo, n, nil, nil, nil), n, mock
}

func TestApprove_LostRaceToSameDecision(t *testing.T) {
	svc, n, mock := racedService(t, true)

	res, err := svc.Apply(context.Background(), approval.SubjectPartner, 7, approval.Approve, "")

	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, n.approved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprove_LostRaceToOppositeDecision(t *testing.T) {
	svc, n, mock := racedService(t, false)

	_, err := svc.Apply(context.Background(), approval.SubjectPartner, 7, approval.Approve, "")

	assert.ErrorIs(t, err, repository.ErrVersionConflict)
	assert.Empty(t, n.approved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func storeResume(t *testing.T, repo *repository.Repository, store *application.FileStore, internshipID, userID int64) string {
	t.Helper()
	name, size, err := store.Save(strings.NewReader("%PDF-1.4"), ".pdf")
	require.NoError(t, err)
	_, err = repo.CreateApplication(context.Background(), &models.Application{
		InternshipID: internshipID,
		UserID:       userID,
		ResumeName:   "cv.pdf",
		ResumePath:   name,
		ResumeSize:   size,
		ContentType:  "application/pdf",
	})
	require.NoError(t, err)
	return name
}

func TestRejectInternship_HardRemovesResumes(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	dir := t.TempDir()
	store, err := application.NewFileStore(dir, 1024)
	require.NoError(t, err)
	svc := approval.NewService(repo, &fakeNotifier{}, nil, &config.InternshipConfig{RejectPolicy: config.RejectHard}, store)
	p := testutil.NewTestPartner(t, repo, "owner@acme.test", true)
	in := testutil.NewTestInternship(t, repo, p.ID, true)
	first := storeResume(t, repo, store, in.ID, testutil.NewTestUser(t, repo, "a@uni.test").ID)
	second := storeResume(t, repo, store, in.ID, testutil.NewTestUser(t, repo, "b@uni.test").ID)

	res, err := svc.Apply(context.Background(), approval.SubjectInternship, in.ID, approval.Reject, "")

	require.NoError(t, err)
	assert.True(t, res.Removed)
	for _, name := range []string{first, second} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	}
}

func TestRejectInternship_SoftKeepsResumes(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	dir := t.TempDir()
	store, err := application.NewFileStore(dir, 1024)
	require.NoError(t, err)
	svc := approval.NewService(repo, &fakeNotifier{}, nil, &config.InternshipConfig{RejectPolicy: config.RejectSoft}, store)
	p := testutil.NewTestPartner(t, repo, "owner@acme.test", true)
	in := testutil.NewTestInternship(t, repo, p.ID, true)
	name := storeResume(t, repo, store, in.ID, testutil.NewTestUser(t, repo, "a@uni.test").ID)

	_, err = svc.Apply(context.Background(), approval.SubjectInternship, in.ID, approval.Reject, "")

	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, name))
	assert.NoError(t, err)
}
