package utils

import (
	"regexp"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewInvitationCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := NewInvitationCode()
		require.NoError(t, err)
		require.Regexp(t, pattern, code)
		seen[code] = true
	}
	require.Greater(t, len(seen), 95)
}

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "user-1", 5)
	require.NoError(t, err)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	require.Equal(t, "user-1", sub)

	_, err = jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("other"), nil })
	require.Error(t, err)
}
