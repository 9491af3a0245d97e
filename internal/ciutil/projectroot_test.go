package ciutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeProject(t *testing.T, withMigrations bool) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, GoModFile), []byte("module example\n"), 0o600))
	if withMigrations {
		require.NoError(t, os.MkdirAll(filepath.Join(root, MigrationsPath), 0o755))
	}
	return root
}

func TestFindProjectRootFromEnvironment(t *testing.T) {
	clearCIEnv(t)
	root := makeProject(t, false)
	t.Setenv(EnvHuddleProjectRoot, root)

	got, err := FindProjectRoot(nil)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFindProjectRootRejectsInvalidOverride(t *testing.T) {
	clearCIEnv(t)
	t.Setenv(EnvHuddleProjectRoot, t.TempDir())

	_, err := FindProjectRoot(nil)
	assert.ErrorIs(t, err, ErrInvalidProjectRoot)
}

func TestFindProjectRootFromGitHubWorkspace(t *testing.T) {
	clearCIEnv(t)
	root := makeProject(t, false)
	t.Setenv(EnvGitHubActions, "true")
	t.Setenv(EnvGitHubWorkspace, root)

	got, err := FindProjectRoot(nil)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFindProjectRootByTraversal(t *testing.T) {
	t.Parallel()
	root := makeProject(t, false)
	nested := filepath.Join(root, "internal", "api")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := findProjectRootByTraversal(nested, nil)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFindMigrationsDir(t *testing.T) {
	clearCIEnv(t)

	root := makeProject(t, true)
	t.Setenv(EnvHuddleProjectRoot, root)
	got, err := FindMigrationsDir(nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, MigrationsPath), got)

	t.Setenv(EnvHuddleProjectRoot, makeProject(t, false))
	_, err = FindMigrationsDir(nil)
	assert.Error(t, err)
}
