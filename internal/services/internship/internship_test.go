// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package internship_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/skillnaav/portal/internal/auth"
	"codeberg.org/skillnaav/portal/internal/models"
	"codeberg.org/skillnaav/portal/internal/repository"
	"codeberg.org/skillnaav/portal/internal/services/internship"
	"codeberg.org/skillnaav/portal/internal/testutil"
)

func validInput() internship.Input {
	return internship.Input{
		Title:          " Data Intern ",
		Company:        "Acme",
		Location:       "Berlin",
		Description:    "Help us with dashboards",
		Qualifications: []string{"SQL", " ", "Python"},
		ContactName:    "Jane",
		ContactEmail:   "jane@acme.test",
		ContactPhone:   "555-0100",
	}
}

func setup(t *testing.T) (*internship.Service, *repository.Repository, *auth.Identity) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	p := testutil.NewTestPartner(t, repo, "p@acme.test", true)
	return internship.NewService(repo), repo, auth.FromModel(p)
}

func TestCreate(t *testing.T) {
	svc, _, owner := setup(t)

	in, err := svc.Create(context.Background(), owner, validInput())

	require.NoError(t, err)
	assert.Equal(t, "Data Intern", in.Title)
	assert.Equal(t, owner.ID, in.PartnerID)
	assert.Equal(t, models.StringList{"SQL", "Python"}, in.Qualifications)
	assert.Equal(t, models.StatusPending, in.Status())
}

func TestCreate_Validation(t *testing.T) {
	svc, _, owner := setup(t)

	tests := []struct {
		name   string
		mutate func(*internship.Input)
	}{
		{"title", func(in *internship.Input) { in.Title = "" }},
		{"contact email", func(in *internship.Input) { in.ContactEmail = "nope" }},
		{"phone", func(in *internship.Input) { in.ContactPhone = "  " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), owner, in)
			assert.ErrorIs(t, err, internship.ErrInvalidInput)
		})
	}
}

func TestCreate_OnlyPartners(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Create(context.Background(), &auth.Identity{ID: 1, Role: models.RoleAdmin}, validInput())

	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestUpdate_ResetsApproval(t *testing.T) {
	svc, repo, owner := setup(t)
	ctx := context.Background()
	existing := testutil.NewTestInternship(t, repo, owner.ID, true)

	in := validInput()
	in.Title = "Senior Data Intern"
	updated, err := svc.Update(ctx, owner, existing.ID, in)

	require.NoError(t, err)
	assert.Equal(t, "Senior Data Intern", updated.Title)
	assert.Equal(t, models.StatusPending, updated.Status())
}

func TestUpdate_NotOwner(t *testing.T) {
	svc, repo, owner := setup(t)
	other := testutil.NewTestPartner(t, repo, "other@acme.test", true)
	existing := testutil.NewTestInternship(t, repo, owner.ID, true)

	_, err := svc.Update(context.Background(), auth.FromModel(other), existing.ID, validInput())

	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, owner := setup(t)

	_, err := svc.Update(context.Background(), owner, 404, validInput())

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, repo, owner := setup(t)
	ctx := context.Background()
	existing := testutil.NewTestInternship(t, repo, owner.ID, true)

	require.NoError(t, svc.Delete(ctx, owner, existing.ID))

	_, err := svc.Get(ctx, owner, existing.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGet_Visibility(t *testing.T) {
	svc, repo, owner := setup(t)
	ctx := context.Background()
	pending := testutil.NewTestInternship(t, repo, owner.ID, false)
	admin := auth.FromModel(testutil.NewTestAdmin(t, repo, "a@acme.test"))
	student := auth.FromModel(testutil.NewTestUser(t, repo, "u@uni.test"))

	_, err := svc.Get(ctx, nil, pending.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.Get(ctx, student, pending.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Get(ctx, owner, pending.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, admin, pending.ID)
	assert.NoError(t, err)
}

func TestListings(t *testing.T) {
	svc, repo, owner := setup(t)
	ctx := context.Background()
	testutil.NewTestInternship(t, repo, owner.ID, true)
	testutil.NewTestInternship(t, repo, owner.ID, false)

	public, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	mine, err := svc.ListMine(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	review, err := svc.ListForReview(ctx)
	require.NoError(t, err)
	assert.Len(t, review, 1)

	_, err = svc.ListMine(ctx, &auth.Identity{ID: 1, Role: models.RoleUser})
	assert.ErrorIs(t, err, auth.ErrForbidden)
}
