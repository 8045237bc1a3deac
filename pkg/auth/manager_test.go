package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitflow/admitflow-backend/pkg/config"
)

func newTestManager(expiry time.Duration) *Manager {
	return NewManager(&config.JWTConfig{
		Secret:       "test-secret",
		AccessExpiry: expiry,
		Issuer:       "admitflow",
	})
}

func TestManager_GenerateAndParse(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	token, err := m.Generate("user-123", "student@example.com", RoleStudent)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Parse(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "student@example.com", claims.Email)
	assert.Equal(t, RoleStudent, claims.Role)
	assert.Equal(t, "admitflow", claims.Issuer)
}

func TestManager_Parse_Expired(t *testing.T) {
	m := newTestManager(-1 * time.Minute)

	token, err := m.Generate("user-123", "student@example.com", RoleStudent)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestManager_Parse_WrongSecret(t *testing.T) {
	m := newTestManager(15 * time.Minute)
	token, err := m.Generate("user-123", "student@example.com", RoleAdmin)
	require.NoError(t, err)

	other := NewManager(&config.JWTConfig{
		Secret:       "other-secret",
		AccessExpiry: 15 * time.Minute,
		Issuer:       "admitflow",
	})

	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestManager_Parse_Garbage(t *testing.T) {
	m := newTestManager(15 * time.Minute)
	_, err := m.Parse("not-a-token")
	assert.Error(t, err)
}
