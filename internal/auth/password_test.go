package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("right-horse")
	require.NoError(t, err)
	require.NotEqual(t, "right-horse", h)

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	require.Equal(t, PasswordCost, cost)

	h2, err := HashPassword("right-horse")
	require.NoError(t, err)
	require.NotEqual(t, h, h2, "hashes must be salted")
}

func TestComparePassword(t *testing.T) {
	h, err := HashPassword("right-horse")
	require.NoError(t, err)

	ok, err := ComparePassword(h, "right-horse")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ComparePassword(h, "wrong-horse")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = ComparePassword("not-a-hash", "right-horse")
	require.Error(t, err)
}
