package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/ride-booking/internal/models"
)

func TestNewService(t *testing.T) {
	service := NewService("", 0)
	assert.NotNil(t, service)
	assert.NotEmpty(t, service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)

	service = NewService("secret", time.Hour)
	assert.Equal(t, []byte("secret"), service.jwtSecret)
	assert.Equal(t, time.Hour, service.TokenExpiry())
}

func TestService_HashPassword(t *testing.T) {
	service := NewService("", 0)

	password := "testpassword123"
	hash, err := service.HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestService_CheckPassword(t *testing.T) {
	service := NewService("", 0)

	password := "testpassword123"
	hash, _ := service.HashPassword(password)

	assert.True(t, service.CheckPassword(password, hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
	assert.False(t, service.CheckPassword(password, ""))
}

func TestService_NewClaims(t *testing.T) {
	service := NewService("", time.Hour)
	fixed := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	c := service.NewClaims("user1")
	assert.Equal(t, "user1", c.UserID)
	assert.Len(t, c.SessionID, 36)
	assert.Equal(t, fixed, c.LoggedInAt)
	assert.Equal(t, fixed.Add(time.Hour).Unix(), c.Exp)

	other := service.NewClaims("user1")
	assert.NotEqual(t, c.SessionID, other.SessionID)
}

func TestService_ValidateToken(t *testing.T) {
	service := NewService("", 0)
	claims := service.NewClaims("user1")

	token, err := service.GenerateToken(claims)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	got, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID, got.SessionID)
	assert.Equal(t, "user1", got.UserID)
	assert.True(t, claims.LoggedInAt.Truncate(time.Second).Equal(got.LoggedInAt))
	assert.Equal(t, claims.Exp, got.Exp)

	_, err = service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)

	_, err = service.ValidateToken("Bearer " + token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_WrongSecret(t *testing.T) {
	token, err := NewService("one", 0).GenerateToken(NewService("one", 0).NewClaims("user1"))
	require.NoError(t, err)

	_, err = NewService("two", 0).ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_TokenExpiration(t *testing.T) {
	service := NewService("", time.Minute)
	claims := service.NewClaims("user1")
	token, err := service.GenerateToken(claims)
	require.NoError(t, err)

	now := time.Now().Unix()
	got, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Greater(t, got.Exp, now)
	assert.LessOrEqual(t, got.Exp, now+int64(time.Minute.Seconds())+1)

	service.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = service.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestService_GenerateToken_RequiresSession(t *testing.T) {
	service := NewService("", 0)
	token, err := service.GenerateToken(models.Claims{UserID: "user1", Exp: time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := NewService("", 0)

	extracted, err := service.ExtractTokenFromHeader("Bearer valid-token")
	assert.NoError(t, err)
	assert.Equal(t, "valid-token", extracted)

	for _, header := range []string{"", "InvalidFormat", "Bearer ", "Basic abc", "Bearer a b"} {
		_, err = service.ExtractTokenFromHeader(header)
		assert.Equal(t, ErrInvalidToken, err, "header %q", header)
	}
}
