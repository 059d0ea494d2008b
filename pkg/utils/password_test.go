package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomPassword(t *testing.T) {
	p, err := RandomPassword(12)
	require.NoError(t, err)
	require.Len(t, p, 12)
	for _, r := range p {
		require.True(t, strings.ContainsRune(passwordAlphabet, r), "unexpected character %q", r)
	}

	q, err := RandomPassword(12)
	require.NoError(t, err)
	require.NotEqual(t, p, q)
}

func TestRandomPasswordDefaultLength(t *testing.T) {
	p, err := RandomPassword(0)
	require.NoError(t, err)
	require.Len(t, p, 12)
}
