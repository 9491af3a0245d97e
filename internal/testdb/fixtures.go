//go:build integration

package testdb

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/store"
	"github.com/stretchr/testify/require"
)

// MustInsertUser inserts a user and returns its id.
func MustInsertUser(ctx context.Context, t *testing.T, db store.DBTX, email, displayName string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name) VALUES ($1, $2, $3)`,
		id, email, displayName)
	require.NoError(t, err, "failed to insert user")
	return id
}

// MustInsertGroup inserts a group and returns its id.
func MustInsertGroup(ctx context.Context, t *testing.T, db store.DBTX, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.ExecContext(ctx, `INSERT INTO groups (id, name) VALUES ($1, $2)`, id, name)
	require.NoError(t, err, "failed to insert group")
	return id
}

// MustInsertMembership adds userID to groupID.
func MustInsertMembership(
	ctx context.Context,
	t *testing.T,
	db store.DBTX,
	groupID, userID uuid.UUID,
	accepted bool,
) {
	t.Helper()
	_, err := db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, accepted) VALUES ($1, $2, $3)`,
		groupID, userID, accepted)
	require.NoError(t, err, "failed to insert membership")
}
