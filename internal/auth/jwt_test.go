package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWTGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", 24)

	token, jti, err := svc.Generate("ana@church.org")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "ana@church.org", claims.Email)
	require.Equal(t, jti, claims.ID)
}

func TestJWTValidateRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTService("secret-a", 24).Generate("ana@church.org")
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", 24).Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", 24)

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Validate(bad)
		require.ErrorIs(t, err, ErrInvalidToken, bad)
	}
}

func TestJWTValidateRejectsExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -1)

	token, _, err := svc.Generate("ana@church.org")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTTokenIDsAreUnique(t *testing.T) {
	svc := NewJWTService("test-secret", 24)

	_, first, err := svc.Generate("ana@church.org")
	require.NoError(t, err)
	_, second, err := svc.Generate("ana@church.org")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
