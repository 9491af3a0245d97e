package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/domain"
)

// DefaultListLimit is used by list operations when the caller passes a
// non-positive limit.
const DefaultListLimit = 100

// TaskStore defines the interface for task data persistence.
// Every read is scoped to a group: a task that exists in another group is
// reported as ErrTaskNotFound.
type TaskStore interface {
	// Create saves a new task. The stored created_at is written back into task.
	// Returns ErrInvalidEntity if the task fails validation or a constraint.
	Create(ctx context.Context, task *domain.Task) error

	// ListByGroup returns up to limit tasks of the group ordered by date,
	// then creation time, then id. Relations are not populated.
	ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]*domain.Task, error)

	// GetByID retrieves a task by id within a group.
	// Returns ErrTaskNotFound if no such task exists in the group.
	GetByID(ctx context.Context, taskID, groupID uuid.UUID) (*domain.Task, error)

	// Update writes the fields present in patch and stamps updated_at.
	// existing must be the current row; the returned task is the stored result.
	// Returns ErrTaskNotFound if the task disappeared.
	Update(ctx context.Context, existing *domain.Task, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes a task and, through the foreign key, its relations.
	// Returns ErrTaskNotFound if no such task exists in the group.
	Delete(ctx context.Context, taskID, groupID uuid.UUID) error

	// WithTx returns a TaskStore that runs its queries in tx.
	WithTx(tx *sql.Tx) TaskStore
}
