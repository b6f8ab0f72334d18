package secret

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcrypt_HashVerifies(t *testing.T) {
	h, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("Admin@12345")
	require.NoError(t, err)
	require.NotEqual(t, "Admin@12345", hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Admin@12345")))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, cost)
}

func TestBcrypt_SaltedPerCall(t *testing.T) {
	h, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestNewBcrypt_Cost(t *testing.T) {
	h, err := NewBcrypt(0)
	require.NoError(t, err)
	require.Equal(t, DefaultCost, h.cost)

	_, err = NewBcrypt(bcrypt.MaxCost + 1)
	require.Error(t, err)
	_, err = NewBcrypt(1)
	require.Error(t, err)
}

func TestBcrypt_RejectsOverlongSecret(t *testing.T) {
	h, err := NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("x", 73))
	require.Error(t, err)
}
