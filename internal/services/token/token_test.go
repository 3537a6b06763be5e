// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/skillnaav/portal/internal/auth"
	"codeberg.org/skillnaav/portal/internal/config"
	"codeberg.org/skillnaav/portal/internal/models"
)

var testSecret = strings.Repeat("t", config.MinSecretLength)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(&config.AuthConfig{JWTSecret: testSecret, JWTIssuer: "skillnaav", TokenTTL: time.Hour})
	require.NoError(t, err)
	return svc
}

func TestNewService_RejectsWeakSecret(t *testing.T) {
	_, err := NewService(&config.AuthConfig{JWTSecret: "yoursecretkey", TokenTTL: time.Hour})
	assert.ErrorIs(t, err, config.ErrWeakSecret)

	_, err = NewService(&config.AuthConfig{JWTSecret: testSecret})
	assert.ErrorIs(t, err, config.ErrInvalidTTL)
}

func TestIssueAndVerify(t *testing.T) {
	svc := newTestService(t)

	raw, expires, err := svc.Issue(&auth.Identity{ID: 7, Role: models.RolePartner})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.ID)
	assert.Equal(t, models.RolePartner, claims.Role)
	assert.Equal(t, "skillnaav", claims.Issuer)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
}

func TestIssue_RequiresIdentity(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Issue(nil)
	assert.Error(t, err)

	_, _, err = svc.Issue(&auth.Identity{ID: 1, Role: "root"})
	assert.Error(t, err)
}

func TestVerify_Malformed(t *testing.T) {
	svc := newTestService(t)

	for _, raw := range []string{"", "abc.def", "not-a-token", "a.b.c"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, auth.ErrInvalidToken, raw)
	}
}

func TestVerify_Expired(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	raw, _, err := svc.Issue(&auth.Identity{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestVerify_ExpiredWithWrongSignatureIsInvalid(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := svc.Issue(&auth.Identity{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	other := newTestService(t)
	other.secret = []byte(strings.Repeat("o", config.MinSecretLength))

	_, err = other.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	svc := newTestService(t)
	raw, _, err := svc.Issue(&auth.Identity{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	other := newTestService(t)
	other.secret = []byte(strings.Repeat("o", config.MinSecretLength))

	_, err = other.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerify_WrongAlgorithm(t *testing.T) {
	svc := newTestService(t)
	claims := Claims{
		ID:   1,
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "skillnaav",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerify_UnknownRole(t *testing.T) {
	svc := newTestService(t)
	claims := Claims{
		ID:   1,
		Role: "root",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "skillnaav",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerify_WrongIssuer(t *testing.T) {
	svc := newTestService(t)
	raw, _, err := svc.Issue(&auth.Identity{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	svc.issuer = "someone-else"
	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
