package token

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssue(t *testing.T) {
	tok := Issue()
	require.Len(t, tok, 2*Size)

	_, err := hex.DecodeString(tok)
	require.NoError(t, err, "token should be hex encoded")
}

func TestIssueUnique(t *testing.T) {
	const count = 100
	seen := make(map[string]bool, count)

	for range count {
		tok := Issue()
		require.NotContains(t, seen, tok, "duplicate token generated")
		seen[tok] = true
	}
}

func TestHash(t *testing.T) {
	a := Hash("token-a")
	require.Equal(t, a, Hash("token-a"), "hash should be deterministic")
	require.NotEqual(t, a, Hash("token-b"))
	require.Len(t, a, 64)

	// Known SHA-256 vector.
	require.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Hash(""))
}
