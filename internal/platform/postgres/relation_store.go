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

// PostgresRelationStore implements the store.RelationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRelationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRelationStore creates a new PostgreSQL implementation of the RelationStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresRelationStore(db store.DBTX, logger *slog.Logger) *PostgresRelationStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRelationStore{
		db:     db,
		logger: logger.With(slog.String("component", "relation_store")),
	}
}

// Ensure PostgresRelationStore implements store.RelationStore interface
var _ store.RelationStore = (*PostgresRelationStore)(nil)

// Add implements store.RelationStore.Add.
//
// A conflicting (task_id, user_id) pair is skipped with ON CONFLICT DO NOTHING
// and reported as store.ErrRelationExists. No statement fails, so a caller's
// transaction remains usable. On success rel.User is filled from the users table.
func (s *PostgresRelationStore) Add(ctx context.Context, rel *domain.TaskUserRelation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rel.Validate(); err != nil {
		log.Warn("relation validation failed during add",
			slog.String("error", err.Error()),
			slog.String("task_id", rel.TaskID.String()))
		return err
	}

	query := `
		WITH r AS (
			INSERT INTO task_user_relations (id, task_id, user_id, is_assigned, reaction, comment)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (task_id, user_id) DO NOTHING
			RETURNING id, task_id, user_id, is_assigned, reaction, comment
		)
		SELECT ` + relationColumns + `
		FROM r
		LEFT JOIN users u ON u.id = r.user_id
	`
	stored, err := scanRelation(s.db.QueryRowContext(
		ctx,
		query,
		rel.ID,
		rel.TaskID,
		rel.UserID,
		rel.IsAssigned,
		rel.Reaction,
		rel.Comment,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("relation already exists",
				slog.String("task_id", rel.TaskID.String()),
				slog.String("user_id", rel.UserID.String()))
			return store.ErrRelationExists
		}
		log.Error("failed to add relation",
			redact.ErrorAttr(err),
			slog.String("task_id", rel.TaskID.String()),
			slog.String("user_id", rel.UserID.String()))
		return MapError(err)
	}

	rel.User = stored.User
	log.Info("relation added",
		slog.String("relation_id", rel.ID.String()),
		slog.String("task_id", rel.TaskID.String()),
		slog.String("user_id", rel.UserID.String()))
	return nil
}

// Get implements store.RelationStore.Get.
// Returns store.ErrRelationNotFound if the user has no relation to the task.
func (s *PostgresRelationStore) Get(ctx context.Context, taskID, userID uuid.UUID) (*domain.TaskUserRelation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + relationColumns + `
		FROM task_user_relations r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.task_id = $1 AND r.user_id = $2
	`
	rel, err := scanRelation(s.db.QueryRowContext(ctx, query, taskID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("relation not found",
				slog.String("task_id", taskID.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrRelationNotFound
		}
		log.Error("failed to get relation",
			redact.ErrorAttr(err),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	return rel, nil
}

// Update implements store.RelationStore.Update.
// An empty patch writes nothing and returns the current row.
func (s *PostgresRelationStore) Update(
	ctx context.Context,
	existing *domain.TaskUserRelation,
	patch domain.RelationPatch,
) (*domain.TaskUserRelation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	merged, err := existing.Apply(patch)
	if err != nil {
		log.Warn("relation validation failed during update",
			slog.String("error", err.Error()),
			slog.String("relation_id", existing.ID.String()))
		return nil, err
	}

	if patch.IsEmpty() {
		return s.Get(ctx, existing.TaskID, existing.UserID)
	}

	b := newUpdateBuilder("task_user_relations")
	if patch.Reaction.Set {
		b.set("reaction", merged.Reaction)
	}
	if patch.Comment.Set {
		b.set("comment", merged.Comment)
	}
	if patch.IsAssigned.Set {
		b.set("is_assigned", merged.IsAssigned)
	}
	b.whereEq("id", existing.ID)
	update, args := b.build("id, task_id, user_id, is_assigned, reaction, comment")

	query := `
		WITH r AS (` + update + `)
		SELECT ` + relationColumns + `
		FROM r
		LEFT JOIN users u ON u.id = r.user_id
	`
	updated, err := scanRelation(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("relation not found for update", slog.String("relation_id", existing.ID.String()))
			return nil, store.ErrRelationNotFound
		}
		log.Error("failed to update relation",
			redact.ErrorAttr(err),
			slog.String("relation_id", existing.ID.String()))
		return nil, MapError(err)
	}

	log.Info("relation updated",
		slog.String("relation_id", updated.ID.String()),
		slog.String("reaction", updated.Reaction))
	return updated, nil
}

// ListByTask implements store.RelationStore.ListByTask.
func (s *PostgresRelationStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskUserRelation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + relationColumns + `
		FROM task_user_relations r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.task_id = $1
		ORDER BY r.created_at ASC, r.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to list relations of task",
			redact.ErrorAttr(err),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	rels := make([]*domain.TaskUserRelation, 0)
	for rows.Next() {
		rel, err := scanRelation(rows)
		if err != nil {
			log.Error("failed to scan relation row", redact.ErrorAttr(err))
			return nil, err
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating relation rows", redact.ErrorAttr(err))
		return nil, err
	}
	return rels, nil
}

// ListByGroup implements store.RelationStore.ListByGroup.
// The task window matches PostgresTaskStore.ListByGroup for the same limit.
func (s *PostgresRelationStore) ListByGroup(
	ctx context.Context,
	groupID uuid.UUID,
	limit int,
) (map[uuid.UUID][]*domain.TaskUserRelation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	query := `
		SELECT ` + relationColumns + `
		FROM task_user_relations r
		JOIN (
			SELECT id FROM tasks
			WHERE group_id = $1
			ORDER BY date ASC, created_at ASC, id ASC
			LIMIT $2
		) t ON t.id = r.task_id
		LEFT JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at ASC, r.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, groupID, limit)
	if err != nil {
		log.Error("failed to list relations of group",
			redact.ErrorAttr(err),
			slog.String("group_id", groupID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	byTask := make(map[uuid.UUID][]*domain.TaskUserRelation)
	for rows.Next() {
		rel, err := scanRelation(rows)
		if err != nil {
			log.Error("failed to scan relation row", redact.ErrorAttr(err))
			return nil, err
		}
		byTask[rel.TaskID] = append(byTask[rel.TaskID], rel)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating relation rows", redact.ErrorAttr(err))
		return nil, err
	}
	return byTask, nil
}

// WithTx implements store.RelationStore.WithTx.
func (s *PostgresRelationStore) WithTx(tx *sql.Tx) store.RelationStore {
	return &PostgresRelationStore{
		db:     tx,
		logger: s.logger,
	}
}
