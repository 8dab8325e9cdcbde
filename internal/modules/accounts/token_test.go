package accounts

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRawToken(t *testing.T) {
	a, err := newRawToken()
	require.NoError(t, err)
	b, err := newRawToken()
	require.NoError(t, err)

	require.Len(t, a, 64)
	require.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), a)
	require.NotEqual(t, a, b)
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("abc")
	h2 := HashToken("abc")
	h3 := HashToken("abd")

	require.Len(t, h1, 32)
	require.Equal(t, h1, h2)
	require.NotEqual(t, h1, h3)

	require.True(t, hashEqual(h1, h2))
	require.False(t, hashEqual(h1, h3))
	require.False(t, hashEqual(h1, h1[:16]))
}

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
		seen[code] = true
	}
	// 20 draws from a million values colliding every time is not credible
	require.Greater(t, len(seen), 1)
}
