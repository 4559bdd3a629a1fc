package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager(secret, time.Hour)
	token, jti, err := m.GenerateAccessToken(Identity{Subject: "u-1", Nome: "Dra. Ana", Roles: []string{"admin"}})
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := m.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{Subject: "u-1", Nome: "Dra. Ana", Roles: []string{"admin"}}, claims.Identity())
	assert.Equal(t, jti, claims.ID)
}

func TestJWTRejectsOtherSecretAndExpired(t *testing.T) {
	token, _, err := NewJWTManager(secret, time.Hour).GenerateAccessToken(Identity{Subject: "u-1"})
	require.NoError(t, err)
	_, err = NewJWTManager("outro-segredo-com-32-caracteres!!", time.Hour).ParseAndValidate(token)
	assert.Error(t, err)

	expired, _, err := NewJWTManager(secret, -time.Minute).GenerateAccessToken(Identity{Subject: "u-1"})
	require.NoError(t, err)
	_, err = NewJWTManager(secret, time.Hour).ParseAndValidate(expired)
	assert.Error(t, err)

	_, _, err = NewJWTManager(secret, time.Hour).GenerateAccessToken(Identity{})
	assert.Error(t, err)
}

func TestCheckPermissionStub(t *testing.T) {
	assert.True(t, CheckPermission(DevIdentity, "usuarios:excluir"))
	assert.True(t, CheckPermission(Identity{Roles: []string{" ADMIN "}}, "qualquer"))
	assert.False(t, CheckPermission(Identity{Roles: []string{"estagiario"}}, "usuarios:excluir"))
}
