package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadQueriesMissingFileReturnsDefaults(t *testing.T) {
	queries, err := LoadQueries(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultQueries, queries)
}

func TestLoadQueriesParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	content := `queries:
  - name: mine
    query: "scope:created-by-me state:opened"
  - name: team bugs
    query: "repo:group/app label:bug"
  - name: ""
    query: "dropped because nameless"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	queries, err := LoadQueries(path)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "mine", queries[0].Name)
	assert.Equal(t, "repo:group/app label:bug", queries[1].Query)
}

func TestLoadQueriesInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queries: [unclosed"), 0o644))

	_, err := LoadQueries(path)
	assert.Error(t, err)
}

func TestGetEnvDurationDefault(t *testing.T) {
	t.Setenv("TTL_A", "90s")
	t.Setenv("TTL_B", "45")
	t.Setenv("TTL_C", "garbage")

	assert.Equal(t, 90*time.Second, getEnvDurationDefault("TTL_A", 0))
	assert.Equal(t, 45*time.Second, getEnvDurationDefault("TTL_B", 0))
	assert.Equal(t, 2*time.Minute, getEnvDurationDefault("TTL_C", 2*time.Minute))
	assert.Equal(t, 2*time.Minute, getEnvDurationDefault("TTL_UNSET", 2*time.Minute))
}
