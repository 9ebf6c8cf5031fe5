package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestFileCredentialStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "token.json")
	f := NewFileCredentialStore(path)

	tok, err := f.Read()
	require.NoError(t, err)
	assert.Nil(t, tok)

	require.NoError(t, f.Write(&oauth2.Token{AccessToken: "glpat-secret"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err = f.Read()
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "glpat-secret", tok.AccessToken)

	require.NoError(t, f.Clear())
	tok, err = f.Read()
	require.NoError(t, err)
	assert.Nil(t, tok)

	// Clearing again is fine.
	require.NoError(t, f.Clear())
}

func TestFileCredentialStoreRejectsEmptyToken(t *testing.T) {
	f := NewFileCredentialStore(filepath.Join(t.TempDir(), "token.json"))
	assert.Error(t, f.Write(nil))
	assert.Error(t, f.Write(&oauth2.Token{}))
}
