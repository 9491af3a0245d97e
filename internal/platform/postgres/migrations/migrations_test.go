package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.Len(t, files, 3)

	for _, name := range files {
		body, err := fs.ReadFile(FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}

	relations, err := fs.ReadFile(FS, "00003_create_task_user_relations.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(relations), "UNIQUE (task_id, user_id)"),
		"joins rely on the (task_id, user_id) unique constraint")
}
