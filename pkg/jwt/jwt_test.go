package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func TestNewService(t *testing.T) {
	service := NewService(testSecret, time.Hour, 15*time.Minute)

	assert.NotNil(t, service)
	assert.Equal(t, testSecret, service.secret)
	assert.Equal(t, time.Hour, service.accessTokenExpiry)
	assert.Equal(t, 15*time.Minute, service.magicLinkExpiry)
}

func TestGenerateAccessToken(t *testing.T) {
	service := NewService(testSecret, time.Hour, 15*time.Minute)

	token, err := service.GenerateAccessToken(42, ActorStaff, "Hotel Manager")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.ActorID)
	assert.Equal(t, ActorStaff, claims.ActorType)
	assert.Equal(t, "Hotel Manager", claims.RoleName)
	assert.Equal(t, AccessToken, claims.TokenType)
}

func TestGenerateSetPasswordToken(t *testing.T) {
	service := NewService(testSecret, time.Hour, 15*time.Minute)

	token, err := service.GenerateSetPasswordToken(7)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateSetPasswordToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.ActorID)
	assert.Equal(t, ActorUser, claims.ActorType)
	assert.Equal(t, SetPasswordTok, claims.TokenType)
}

func TestValidateAccessToken(t *testing.T) {
	service := NewService(testSecret, time.Hour, 15*time.Minute)

	token, err := service.GenerateAccessToken(1, ActorUser, "")
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.ActorID)
	assert.Equal(t, ActorUser, claims.ActorType)
	assert.Empty(t, claims.RoleName)

	// Invalid token
	_, err = service.ValidateAccessToken("invalid.token.here")
	assert.Error(t, err)

	// Wrong secret
	wrongService := NewService("wrong-secret", time.Hour, 15*time.Minute)
	_, err = wrongService.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestTokenTypeMismatch(t *testing.T) {
	service := NewService(testSecret, time.Hour, 15*time.Minute)

	accessToken, err := service.GenerateAccessToken(9, ActorUser, "")
	require.NoError(t, err)

	// A session token must not pass as a magic-link token
	_, err = service.ValidateSetPasswordToken(accessToken)
	assert.Error(t, err)

	magicToken, err := service.GenerateSetPasswordToken(9)
	require.NoError(t, err)

	// And the other way around
	_, err = service.ValidateAccessToken(magicToken)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	service := NewService(testSecret, time.Millisecond, time.Millisecond)

	token, err := service.GenerateAccessToken(5, ActorUser, "")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = service.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestTokenSigningMethod(t *testing.T) {
	service := NewService(testSecret, time.Hour, 15*time.Minute)

	token, err := service.GenerateAccessToken(3, ActorStaff, "Front Desk")
	require.NoError(t, err)

	parsedToken, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	_, ok := parsedToken.Method.(*jwt.SigningMethodHMAC)
	assert.True(t, ok, "Token should use HMAC signing method")
}

func TestTokenIssuerAndSubject(t *testing.T) {
	service := NewService(testSecret, time.Hour, 15*time.Minute)

	token, err := service.GenerateAccessToken(123, ActorUser, "")
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "insiderbookings-backoffice", claims.Issuer)
	assert.Equal(t, "123", claims.Subject)
}

func TestConcurrentTokenGeneration(t *testing.T) {
	service := NewService(testSecret, time.Hour, 15*time.Minute)

	done := make(chan bool)
	errors := make(chan error, 50)

	for i := 0; i < 50; i++ {
		go func(id int64) {
			token, err := service.GenerateAccessToken(id, ActorUser, "")
			if err != nil {
				errors <- err
				done <- true
				return
			}

			_, err = service.ValidateAccessToken(token)
			if err != nil {
				errors <- err
			}
			done <- true
		}(int64(i + 1))
	}

	for i := 0; i < 50; i++ {
		<-done
	}

	close(errors)
	assert.Empty(t, errors)
}
