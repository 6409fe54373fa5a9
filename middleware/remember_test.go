package middleware

import (
	"testing"
	"time"

	"expensebook/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRememberToken_RoundTrip(t *testing.T) {
	InitTokens(&config.Config{Token: config.TokenConfig{Secret: "test-secret"}})

	token, err := GenerateRememberToken(7, "alice123", time.Hour)
	require.NoError(t, err)

	claims, err := ParseRememberToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice123", claims.Username)
	assert.Equal(t, "expensebook", claims.Issuer)
}

func TestRememberToken_Expired(t *testing.T) {
	InitTokens(&config.Config{Token: config.TokenConfig{Secret: "test-secret"}})

	token, err := GenerateRememberToken(7, "alice123", -time.Minute)
	require.NoError(t, err)

	_, err = ParseRememberToken(token)
	assert.Error(t, err)
}

func TestRememberToken_WrongSecret(t *testing.T) {
	InitTokens(&config.Config{Token: config.TokenConfig{Secret: "secret-a"}})
	token, err := GenerateRememberToken(7, "alice123", time.Hour)
	require.NoError(t, err)

	InitTokens(&config.Config{Token: config.TokenConfig{Secret: "secret-b"}})
	_, err = ParseRememberToken(token)
	assert.Error(t, err)
}

func TestRememberToken_Garbage(t *testing.T) {
	InitTokens(&config.Config{Token: config.TokenConfig{Secret: "test-secret"}})
	_, err := ParseRememberToken("not-a-token")
	assert.Error(t, err)
}
