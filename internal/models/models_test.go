// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/skillnaav/portal/internal/models"
)

func TestApprovalStatus(t *testing.T) {
	tests := []struct {
		name     string
		approval models.Approval
		expected models.ApprovalStatus
	}{
		{"new record", models.Approval{}, models.StatusPending},
		{"approved", models.Approval{Approved: true, Reviewed: true}, models.StatusApproved},
		{"rejected", models.Approval{Reviewed: true}, models.StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.approval.Status())
		})
	}
}

func TestStringList_Value(t *testing.T) {
	v, err := models.StringList{"go", "sql"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["go","sql"]`, v)

	v, err = models.StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestStringList_Scan(t *testing.T) {
	var l models.StringList

	require.NoError(t, l.Scan(`["a","b"]`))
	assert.Equal(t, models.StringList{"a", "b"}, l)

	require.NoError(t, l.Scan([]byte(`["c"]`)))
	assert.Equal(t, models.StringList{"c"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("not json"))
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in       string
		expected models.Role
		wantErr  bool
	}{
		{"user", models.RoleUser, false},
		{"student", models.RoleUser, false},
		{"Partner", models.RolePartner, false},
		{" admin ", models.RoleAdmin, false},
		{"root", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := models.ParseRole(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrUnknownRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, r)
		})
	}
}

func TestIdentityRoles(t *testing.T) {
	identities := []models.Identity{&models.User{}, &models.Partner{}, &models.Admin{}}
	for i, id := range identities {
		assert.Equal(t, models.Roles()[i], id.Role())
		assert.NotNil(t, id.Base())
	}
}

func TestAccount_JSONHidesPasswordHash(t *testing.T) {
	p := models.Partner{Account: models.Account{ID: 1, Email: "p@x.com", PasswordHash: "secret"}}

	b, err := json.Marshal(p)
	require.NoError(t, err)

	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "password_hash")
	assert.Contains(t, string(b), `"email":"p@x.com"`)
}

func TestPasswordResetToken_Expired(t *testing.T) {
	now := time.Now()
	tok := &models.PasswordResetToken{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, tok.Expired(now))
	assert.True(t, tok.Expired(now.Add(time.Minute)))
}

func TestRoleValid(t *testing.T) {
	for _, r := range models.Roles() {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, models.Role("student").Valid())
	assert.False(t, models.Role("").Valid())
}
