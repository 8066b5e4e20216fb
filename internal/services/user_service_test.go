package services

import (
	"testing"
	"time"

	"farm-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJWTRoundTrip(t *testing.T) {
	svc := NewUserService(nil, "unit-test-secret", time.Hour)

	signed, err := svc.generateJWT(&models.User{
		Username: "demo",
		Email:    "demo@farm.local",
	})
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("unit-test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "demo@farm.local", claims["email"])
	assert.Equal(t, "demo", claims["username"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	assert.Greater(t, exp, float64(time.Now().Unix()))
}

func TestGenerateJWTWrongSecretRejected(t *testing.T) {
	svc := NewUserService(nil, "unit-test-secret", time.Hour)

	signed, err := svc.generateJWT(&models.User{Email: "demo@farm.local"})
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	svc := NewUserService(nil, "unit-test-secret", time.Hour)

	_, err := svc.Register(&models.RegisterRequest{Email: "demo@farm.local"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
