package service

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

// TaskService provides the task and relation use cases of a group.
// Every method first checks that userID is an accepted member of groupID and
// returns ErrNotGroupMember otherwise.
type TaskService interface {
	// CreateTask creates a task and the creator's relation to it atomically.
	// The returned task carries the creator relation in Relations.
	CreateTask(ctx context.Context, userID, groupID uuid.UUID, in domain.TaskInput) (*domain.Task, error)

	// ListTasks returns the group's tasks ordered by date with their relations.
	ListTasks(ctx context.Context, userID, groupID uuid.UUID) ([]*domain.Task, error)

	// GetTask returns a single task of the group with its relations.
	GetTask(ctx context.Context, userID, groupID, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a partial update to a task of the group.
	UpdateTask(
		ctx context.Context,
		userID, groupID, taskID uuid.UUID,
		patch domain.TaskPatch,
	) (*domain.Task, error)

	// DeleteTask removes a task of the group together with its relations.
	DeleteTask(ctx context.Context, userID, groupID, taskID uuid.UUID) error

	// JoinTask relates the caller to the task. Joining twice is not an error:
	// the existing relation is returned with Outcome JoinAlreadyJoined.
	JoinTask(ctx context.Context, userID, groupID, taskID uuid.UUID) (*domain.JoinResult, error)

	// UpdateReaction updates the caller's own relation to the task.
	// Returns ErrNotJoined if the caller has not joined the task.
	UpdateReaction(
		ctx context.Context,
		userID, groupID, taskID uuid.UUID,
		patch domain.RelationPatch,
	) (*domain.TaskUserRelation, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	db          store.TxBeginner
	tasks       store.TaskStore
	relations   store.RelationStore
	memberships store.MembershipStore
	listLimit   int
	logger      *slog.Logger
}

// NewTaskService creates a new TaskService.
// db is used to open the transaction of CreateTask. A listLimit <= 0 selects
// store.DefaultListLimit. It returns an error if any dependency is nil.
func NewTaskService(
	db store.TxBeginner,
	tasks store.TaskStore,
	relations store.RelationStore,
	memberships store.MembershipStore,
	listLimit int,
	logger *slog.Logger,
) (TaskService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if relations == nil {
		return nil, domain.NewValidationError("relations", "cannot be nil", domain.ErrValidation)
	}
	if memberships == nil {
		return nil, domain.NewValidationError("memberships", "cannot be nil", domain.ErrValidation)
	}

	if listLimit <= 0 {
		listLimit = store.DefaultListLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		db:          db,
		tasks:       tasks,
		relations:   relations,
		memberships: memberships,
		listLimit:   listLimit,
		logger:      logger.With(slog.String("component", "task_service")),
	}, nil
}

// authorize returns nil only for an accepted member of the group.
func (s *taskServiceImpl) authorize(ctx context.Context, op string, userID, groupID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	membership, err := s.memberships.Get(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMembershipNotFound) {
			log.Debug("caller has no membership",
				slog.String("user_id", userID.String()),
				slog.String("group_id", groupID.String()))
			return ErrNotGroupMember
		}
		log.Error("failed to look up membership",
			redact.ErrorAttr(err),
			slog.String("group_id", groupID.String()))
		return NewTaskServiceError(op, "failed to check group membership", err)
	}

	if !membership.GrantsAccess() {
		log.Debug("caller membership not accepted",
			slog.String("user_id", userID.String()),
			slog.String("group_id", groupID.String()))
		return ErrNotGroupMember
	}
	return nil
}

// getTask loads a task of the group, translating absence to ErrTaskNotFound.
func (s *taskServiceImpl) getTask(ctx context.Context, op string, groupID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID, groupID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load task",
			redact.ErrorAttr(err),
			slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError(op, "failed to load task", err)
	}
	return task, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	userID, groupID uuid.UUID,
	in domain.TaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.authorize(ctx, "create_task", userID, groupID); err != nil {
		return nil, err
	}

	task, err := domain.NewTask(groupID, in)
	if err != nil {
		log.Debug("invalid task input", slog.String("error", err.Error()))
		return nil, err
	}
	creator, err := domain.NewTaskUserRelation(task.ID, userID, false)
	if err != nil {
		return nil, NewTaskServiceError("create_task", "failed to build creator relation", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).Create(ctx, task); err != nil {
			return err
		}
		return s.relations.WithTx(tx).Add(ctx, creator)
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		log.Error("failed to create task",
			redact.ErrorAttr(err),
			slog.String("group_id", groupID.String()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	task.Relations = []*domain.TaskUserRelation{creator}
	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("group_id", groupID.String()),
		slog.String("user_id", userID.String()))
	return task, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, userID, groupID uuid.UUID) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.authorize(ctx, "list_tasks", userID, groupID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByGroup(ctx, groupID, s.listLimit)
	if err != nil {
		log.Error("failed to list tasks", redact.ErrorAttr(err), slog.String("group_id", groupID.String()))
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	relations, err := s.relations.ListByGroup(ctx, groupID, s.listLimit)
	if err != nil {
		log.Error("failed to list relations", redact.ErrorAttr(err), slog.String("group_id", groupID.String()))
		return nil, NewTaskServiceError("list_tasks", "failed to list relations", err)
	}
	for _, task := range tasks {
		task.Relations = relations[task.ID]
	}

	log.Debug("tasks listed", slog.String("group_id", groupID.String()), slog.Int("count", len(tasks)))
	return tasks, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, userID, groupID, taskID uuid.UUID) (*domain.Task, error) {
	if err := s.authorize(ctx, "get_task", userID, groupID); err != nil {
		return nil, err
	}

	task, err := s.getTask(ctx, "get_task", groupID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelations(ctx, "get_task", task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, groupID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.authorize(ctx, "update_task", userID, groupID); err != nil {
		return nil, err
	}

	existing, err := s.getTask(ctx, "update_task", groupID, taskID)
	if err != nil {
		return nil, err
	}

	updated, err := s.tasks.Update(ctx, existing, patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return nil, err
		case errors.Is(err, store.ErrTaskNotFound):
			return nil, ErrTaskNotFound
		}
		log.Error("failed to update task", redact.ErrorAttr(err), slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError("update_task", "failed to save task", err)
	}

	if err := s.attachRelations(ctx, "update_task", updated); err != nil {
		return nil, err
	}
	log.Info("task updated", slog.String("task_id", taskID.String()), slog.String("user_id", userID.String()))
	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, groupID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.authorize(ctx, "delete_task", userID, groupID); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID, groupID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		log.Error("failed to delete task", redact.ErrorAttr(err), slog.String("task_id", taskID.String()))
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted", slog.String("task_id", taskID.String()), slog.String("user_id", userID.String()))
	return nil
}

// JoinTask implements TaskService.JoinTask
//
// The existing relation is read first. If another request inserts the same
// relation between the read and the insert, the store reports
// store.ErrRelationExists and the winner's row is read back.
func (s *taskServiceImpl) JoinTask(
	ctx context.Context,
	userID, groupID, taskID uuid.UUID,
) (*domain.JoinResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.authorize(ctx, "join_task", userID, groupID); err != nil {
		return nil, err
	}
	if _, err := s.getTask(ctx, "join_task", groupID, taskID); err != nil {
		return nil, err
	}

	existing, err := s.relations.Get(ctx, taskID, userID)
	switch {
	case err == nil:
		log.Debug("caller already joined", slog.String("task_id", taskID.String()))
		return &domain.JoinResult{Relation: existing, Outcome: domain.JoinAlreadyJoined}, nil
	case !errors.Is(err, store.ErrRelationNotFound):
		log.Error("failed to read relation", redact.ErrorAttr(err), slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError("join_task", "failed to read relation", err)
	}

	rel, err := domain.NewTaskUserRelation(taskID, userID, false)
	if err != nil {
		return nil, NewTaskServiceError("join_task", "failed to build relation", err)
	}

	err = s.relations.Add(ctx, rel)
	if errors.Is(err, store.ErrRelationExists) {
		winner, getErr := s.relations.Get(ctx, taskID, userID)
		if getErr != nil {
			log.Error("failed to re-read relation after conflict",
				redact.ErrorAttr(getErr),
				slog.String("task_id", taskID.String()))
			return nil, NewTaskServiceError("join_task", "failed to read relation", getErr)
		}
		return &domain.JoinResult{Relation: winner, Outcome: domain.JoinAlreadyJoined}, nil
	}
	if err != nil {
		log.Error("failed to add relation", redact.ErrorAttr(err), slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError("join_task", "failed to save relation", err)
	}

	log.Info("task joined", slog.String("task_id", taskID.String()), slog.String("user_id", userID.String()))
	return &domain.JoinResult{Relation: rel, Outcome: domain.JoinCreated}, nil
}

// UpdateReaction implements TaskService.UpdateReaction
func (s *taskServiceImpl) UpdateReaction(
	ctx context.Context,
	userID, groupID, taskID uuid.UUID,
	patch domain.RelationPatch,
) (*domain.TaskUserRelation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.authorize(ctx, "update_reaction", userID, groupID); err != nil {
		return nil, err
	}
	if _, err := s.getTask(ctx, "update_reaction", groupID, taskID); err != nil {
		return nil, err
	}

	existing, err := s.relations.Get(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, store.ErrRelationNotFound) {
			return nil, ErrNotJoined
		}
		log.Error("failed to read relation", redact.ErrorAttr(err), slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError("update_reaction", "failed to read relation", err)
	}

	updated, err := s.relations.Update(ctx, existing, patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return nil, err
		case errors.Is(err, store.ErrRelationNotFound):
			return nil, ErrNotJoined
		}
		log.Error("failed to update relation", redact.ErrorAttr(err), slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError("update_reaction", "failed to save relation", err)
	}

	log.Info("reaction updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()),
		slog.String("reaction", updated.Reaction))
	return updated, nil
}

func (s *taskServiceImpl) attachRelations(ctx context.Context, op string, task *domain.Task) error {
	relations, err := s.relations.ListByTask(ctx, task.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list relations",
			redact.ErrorAttr(err),
			slog.String("task_id", task.ID.String()))
		return NewTaskServiceError(op, "failed to list relations", err)
	}
	task.Relations = relations
	return nil
}
