package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/domain"
)

// RelationStore defines the interface for task user relation persistence.
type RelationStore interface {
	// Add inserts a relation. Returns ErrRelationExists if the user already
	// has a relation to the task; the surrounding transaction stays usable.
	Add(ctx context.Context, rel *domain.TaskUserRelation) error

	// Get retrieves the relation of a user to a task.
	// Returns ErrRelationNotFound if there is none.
	Get(ctx context.Context, taskID, userID uuid.UUID) (*domain.TaskUserRelation, error)

	// Update writes the fields present in patch and returns the stored relation.
	// Returns ErrRelationNotFound if the relation disappeared.
	Update(
		ctx context.Context,
		existing *domain.TaskUserRelation,
		patch domain.RelationPatch,
	) (*domain.TaskUserRelation, error)

	// ListByTask returns the relations of a task with user summaries attached.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskUserRelation, error)

	// ListByGroup returns the relations of the first limit tasks of a group,
	// in the same task order as TaskStore.ListByGroup, keyed by task id.
	ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) (map[uuid.UUID][]*domain.TaskUserRelation, error)

	// WithTx returns a RelationStore that runs its queries in tx.
	WithTx(tx *sql.Tx) RelationStore
}
