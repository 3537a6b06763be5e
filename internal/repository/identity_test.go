// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/skillnaav/portal/internal/models"
	"codeberg.org/skillnaav/portal/internal/repository"
	"codeberg.org/skillnaav/portal/internal/testutil"
)

func TestCreatePartner(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	p := testutil.NewTestPartner(t, repo, "Partner@Example.com", false)

	assert.NotZero(t, p.ID)
	assert.Equal(t, "partner@example.com", p.Email)
	assert.Equal(t, "Acme", p.CompanyName)
	assert.Equal(t, models.StatusPending, p.Status())
	assert.Equal(t, int64(1), p.Version)
	assert.NotZero(t, p.CreatedAt)
}

func TestCreatePartner_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	testutil.NewTestPartner(t, repo, "p@example.com", false)

	_, err := repo.CreatePartner(context.Background(), &models.Partner{
		Account:       models.Account{Name: "Other", Email: "P@example.com", PasswordHash: "x"},
		CompanyName:   "Other",
		InstitutionID: "O-1",
	})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestSameEmailAcrossRoles(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	testutil.NewTestUser(t, repo, "same@example.com")
	testutil.NewTestPartner(t, repo, "same@example.com", true)
	testutil.NewTestAdmin(t, repo, "same@example.com")
}

func TestGetPartnerByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	created := testutil.NewTestPartner(t, repo, "p@example.com", true)

	got, err := repo.GetPartnerByEmail(context.Background(), "  P@EXAMPLE.com ")

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestGetPartnerByID_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetPartnerByID(context.Background(), 999)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListPartners(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	empty, err := repo.ListPartners(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	testutil.NewTestPartner(t, repo, "a@example.com", false)
	testutil.NewTestPartner(t, repo, "b@example.com", true)

	list, err := repo.ListPartners(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGetIdentityByID(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	u := testutil.NewTestUser(t, repo, "u@example.com")
	a := testutil.NewTestAdmin(t, repo, "a@example.com")

	got, err := repo.GetIdentityByID(ctx, models.RoleUser, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, got.Role())
	assert.Equal(t, u.Email, got.Base().Email)

	got, err = repo.GetIdentityByID(ctx, models.RoleAdmin, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role())

	_, err = repo.GetIdentityByID(ctx, models.RolePartner, u.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetIdentityByID(ctx, "root", 1)
	assert.ErrorIs(t, err, models.ErrUnknownRole)
}

func TestGetIdentityByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	p := testutil.NewTestPartner(t, repo, "p@example.com", true)

	got, err := repo.GetIdentityByEmail(context.Background(), models.RolePartner, "p@example.com")

	require.NoError(t, err)
	assert.Equal(t, p.ID, got.Base().ID)
}

func TestEmailExists(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.NewTestPartner(t, repo, "p@example.com", false)

	exists, err := repo.EmailExists(ctx, models.RolePartner, "P@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists(ctx, models.RoleUser, "p@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdatePassword(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	p := testutil.NewTestPartner(t, repo, "p@example.com", true)

	require.NoError(t, repo.UpdatePassword(ctx, models.RolePartner, p.ID, "newhash"))

	got, err := repo.GetPartnerByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)
	assert.Equal(t, p.Version+1, got.Version)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, models.RolePartner, 999, "x"), repository.ErrNotFound)
}

func TestUpdatePartnerProfile(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	p := testutil.NewTestPartner(t, repo, "p@example.com", true)

	p.CompanyName = "Globex"
	require.NoError(t, repo.UpdatePartnerProfile(ctx, p))

	got, err := repo.GetPartnerByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Globex", got.CompanyName)
	assert.True(t, got.Approved)
}

func TestUpdateUserProfile(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	u := testutil.NewTestUser(t, repo, "u@example.com")

	u.FieldOfInterest = "Robotics"
	require.NoError(t, repo.UpdateUserProfile(ctx, u))

	got, err := repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Robotics", got.FieldOfInterest)
}

func TestCountApprovedAdmins(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	count, err := repo.CountApprovedAdmins(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	testutil.NewTestAdmin(t, repo, "a@example.com")
	_, err = repo.CreateAdmin(ctx, &models.Admin{Account: models.Account{Name: "P", Email: "p@example.com", PasswordHash: "x"}})
	require.NoError(t, err)

	count, err = repo.CountApprovedAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	admins, err := repo.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 2)
}
