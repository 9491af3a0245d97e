package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/domain"
	"github.com/phrazzld/huddle-api/internal/platform/logger"
	"github.com/phrazzld/huddle-api/internal/redact"
	"github.com/phrazzld/huddle-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create.
// The database assigns created_at, which is written back into task.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, group_id, title, date, time_span_begin, time_span_end,
			location, description, is_task, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.ID,
		task.GroupID,
		task.Title,
		task.Date,
		task.TimeSpanBegin,
		task.TimeSpanEnd,
		task.Location,
		task.Description,
		task.IsTask,
		task.Status,
	).Scan(&task.CreatedAt)
	if err != nil {
		log.Error("failed to create task",
			redact.ErrorAttr(err),
			slog.String("task_id", task.ID.String()),
			slog.String("group_id", task.GroupID.String()))
		return MapError(err)
	}
	task.CreatedAt = task.CreatedAt.UTC()

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("group_id", task.GroupID.String()))
	return nil
}

// ListByGroup implements store.TaskStore.ListByGroup.
func (s *PostgresTaskStore) ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE group_id = $1
		ORDER BY date ASC, created_at ASC, id ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, groupID, limit)
	if err != nil {
		log.Error("failed to list tasks",
			redact.ErrorAttr(err),
			slog.String("group_id", groupID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", redact.ErrorAttr(err))
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", redact.ErrorAttr(err))
		return nil, err
	}

	log.Debug("tasks listed",
		slog.String("group_id", groupID.String()),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID.
// Returns store.ErrTaskNotFound if the task does not exist in the group.
func (s *PostgresTaskStore) GetByID(ctx context.Context, taskID, groupID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND group_id = $2
	`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID, groupID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found",
				slog.String("task_id", taskID.String()),
				slog.String("group_id", groupID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			redact.ErrorAttr(err),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// Update implements store.TaskStore.Update.
// Only columns present in patch are written; updated_at is always refreshed.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	existing *domain.Task,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	merged, err := existing.Apply(patch)
	if err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", existing.ID.String()))
		return nil, err
	}

	b := newUpdateBuilder("tasks")
	if patch.Title.Set {
		b.set("title", merged.Title)
	}
	if patch.Date.Set {
		b.set("date", merged.Date)
	}
	if patch.TimeSpanBegin.Set {
		b.set("time_span_begin", merged.TimeSpanBegin)
	}
	if patch.TimeSpanEnd.Set {
		b.set("time_span_end", merged.TimeSpanEnd)
	}
	if patch.Location.Set {
		b.set("location", merged.Location)
	}
	if patch.Description.Set {
		b.set("description", merged.Description)
	}
	if patch.IsTask.Set {
		b.set("is_task", merged.IsTask)
	}
	if patch.Status.Set {
		b.set("status", merged.Status)
	}
	b.setExpr("updated_at = now()").
		whereEq("id", existing.ID).
		whereEq("group_id", existing.GroupID)

	query, args := b.build(taskColumns)
	updated, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for update", slog.String("task_id", existing.ID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task",
			redact.ErrorAttr(err),
			slog.String("task_id", existing.ID.String()))
		return nil, MapError(err)
	}

	log.Info("task updated", slog.String("task_id", updated.ID.String()))
	return updated, nil
}

// Delete implements store.TaskStore.Delete.
// Relations of the task are removed by ON DELETE CASCADE.
func (s *PostgresTaskStore) Delete(ctx context.Context, taskID, groupID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND group_id = $2`,
		taskID, groupID)
	if err != nil {
		log.Error("failed to delete task",
			redact.ErrorAttr(err),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found for delete", slog.String("task_id", taskID.String()))
		}
		return err
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("group_id", groupID.String()))
	return nil
}

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}
