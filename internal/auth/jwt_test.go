package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/workplane-dev/workplane/internal/models"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	mgr := NewManager("test-secret")
	userID := models.NewUserID()

	token, err := mgr.Generate(userID, "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := mgr.Verify(token)
	require.NoError(t, err)
	require.Equal(t, userID, got)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("one-secret").Generate(models.NewUserID(), "ada@example.com")
	require.NoError(t, err)

	_, err = NewManager("another-secret").Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	mgr := NewManager("test-secret")

	claims := jwt.MapClaims{
		"user_id": models.NewUserID().String(),
		"email":   "ada@example.com",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = mgr.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewManager("test-secret").Verify("not-a-token")
	require.Error(t, err)
}

func TestVerifyRejectsMissingUserClaim(t *testing.T) {
	claims := jwt.MapClaims{
		"email": "ada@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewManager("test-secret").Verify(token)
	require.Error(t, err)
}
