package auth

import (
	"testing"

	"restoran-admin/internal/apperr"
	"restoran-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 7, Email: "admin@restoran.local", Role: models.RoleAdmin}

	token, err := GenerateToken(testSecret, user)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = ParseToken("another-secret-another-secret-000", token)
	assert.Error(t, err)
}

func TestActorRequireAdmin(t *testing.T) {
	assert.NoError(t, Actor{UserID: 1, Role: models.RoleAdmin}.RequireAdmin())

	err := Actor{UserID: 1, Role: models.RoleStaff}.RequireAdmin()
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = Actor{Role: models.RoleAdmin}.RequireAdmin()
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
