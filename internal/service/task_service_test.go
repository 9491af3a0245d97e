package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/domain"
	"github.com/phrazzld/huddle-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc         TaskService
	sql         sqlmock.Sqlmock
	tasks       *MockTaskStore
	relations   *MockRelationStore
	memberships *MockMembershipStore
	userID      uuid.UUID
	groupID     uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &serviceFixture{
		sql:         sqlMock,
		tasks:       new(MockTaskStore),
		relations:   new(MockRelationStore),
		memberships: new(MockMembershipStore),
		userID:      uuid.New(),
		groupID:     uuid.New(),
	}
	f.svc, err = NewTaskService(db, f.tasks, f.relations, f.memberships, 50, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		f.tasks.AssertExpectations(t)
		f.relations.AssertExpectations(t)
		f.memberships.AssertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
	return f
}

func (f *serviceFixture) member() {
	f.memberships.On("Get", mock.Anything, f.groupID, f.userID).
		Return(&domain.GroupMembership{GroupID: f.groupID, UserID: f.userID, Accepted: true}, nil)
}

func (f *serviceFixture) task(t *testing.T) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(f.groupID, domain.TaskInput{
		Title:  "Picnic",
		Date:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Status: "planned",
	})
	require.NoError(t, err)
	return task
}

func picnicInput() domain.TaskInput {
	return domain.TaskInput{
		Title:  "Picnic",
		Date:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Status: "planned",
	}
}

func TestNewTaskService_Validation(t *testing.T) {
	t.Parallel()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = NewTaskService(nil, new(MockTaskStore), new(MockRelationStore), new(MockMembershipStore), 0, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewTaskService(db, nil, new(MockRelationStore), new(MockMembershipStore), 0, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewTaskService(db, new(MockTaskStore), nil, new(MockMembershipStore), 0, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewTaskService(db, new(MockTaskStore), new(MockRelationStore), nil, 0, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	svc, err := NewTaskService(db, new(MockTaskStore), new(MockRelationStore), new(MockMembershipStore), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, store.DefaultListLimit, svc.(*taskServiceImpl).listLimit)
}

func TestTaskService_NonMembersAreRejected(t *testing.T) {
	t.Parallel()

	calls := map[string]func(f *serviceFixture) error{
		"create": func(f *serviceFixture) error {
			_, err := f.svc.CreateTask(context.Background(), f.userID, f.groupID, picnicInput())
			return err
		},
		"list": func(f *serviceFixture) error {
			_, err := f.svc.ListTasks(context.Background(), f.userID, f.groupID)
			return err
		},
		"get": func(f *serviceFixture) error {
			_, err := f.svc.GetTask(context.Background(), f.userID, f.groupID, uuid.New())
			return err
		},
		"update": func(f *serviceFixture) error {
			_, err := f.svc.UpdateTask(context.Background(), f.userID, f.groupID, uuid.New(),
				domain.TaskPatch{Title: domain.Some("x")})
			return err
		},
		"delete": func(f *serviceFixture) error {
			return f.svc.DeleteTask(context.Background(), f.userID, f.groupID, uuid.New())
		},
		"join": func(f *serviceFixture) error {
			_, err := f.svc.JoinTask(context.Background(), f.userID, f.groupID, uuid.New())
			return err
		},
		"reaction": func(f *serviceFixture) error {
			_, err := f.svc.UpdateReaction(context.Background(), f.userID, f.groupID, uuid.New(),
				domain.RelationPatch{Reaction: domain.Some("going")})
			return err
		},
	}

	for name, call := range calls {
		call := call
		t.Run(name+" without membership", func(t *testing.T) {
			t.Parallel()
			f := newServiceFixture(t)
			f.memberships.On("Get", mock.Anything, f.groupID, f.userID).
				Return(nil, store.ErrMembershipNotFound)
			assert.ErrorIs(t, call(f), ErrNotGroupMember)
		})
		t.Run(name+" with pending membership", func(t *testing.T) {
			t.Parallel()
			f := newServiceFixture(t)
			f.memberships.On("Get", mock.Anything, f.groupID, f.userID).
				Return(&domain.GroupMembership{GroupID: f.groupID, UserID: f.userID}, nil)
			assert.ErrorIs(t, call(f), ErrNotGroupMember)
		})
	}
}

func TestTaskService_MembershipLookupFailure(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	dbErr := errors.New("connection reset")
	f.memberships.On("Get", mock.Anything, f.groupID, f.userID).Return(nil, dbErr)

	_, err := f.svc.ListTasks(context.Background(), f.userID, f.groupID)

	var serviceErr *TaskServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "list_tasks", serviceErr.Operation)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrNotGroupMember)
}

func TestTaskService_CreateTask(t *testing.T) {
	t.Parallel()

	t.Run("creates task and creator relation in one transaction", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		f.sql.ExpectBegin()
		f.sql.ExpectCommit()
		f.tasks.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)
		f.relations.On("Add", mock.Anything, mock.AnythingOfType("*domain.TaskUserRelation")).Return(nil)

		task, err := f.svc.CreateTask(context.Background(), f.userID, f.groupID, picnicInput())
		require.NoError(t, err)

		assert.Equal(t, f.groupID, task.GroupID)
		assert.Equal(t, "Picnic", task.Title)
		require.Len(t, task.Relations, 1)
		creator := task.Relations[0]
		assert.Equal(t, f.userID, creator.UserID)
		assert.Equal(t, task.ID, creator.TaskID)
		assert.False(t, creator.IsAssigned)
		assert.Equal(t, domain.ReactionNone, creator.Reaction)
	})

	t.Run("relation failure rolls back", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		f.sql.ExpectBegin()
		f.sql.ExpectRollback()
		dbErr := errors.New("insert failed")
		f.tasks.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.relations.On("Add", mock.Anything, mock.Anything).Return(dbErr)

		_, err := f.svc.CreateTask(context.Background(), f.userID, f.groupID, picnicInput())

		var serviceErr *TaskServiceError
		require.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, "create_task", serviceErr.Operation)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("invalid input is rejected before the store", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		in := picnicInput()
		in.Title = ""

		_, err := f.svc.CreateTask(context.Background(), f.userID, f.groupID, in)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	f.member()
	first, second := f.task(t), f.task(t)
	rel := &domain.TaskUserRelation{ID: uuid.New(), TaskID: first.ID, UserID: f.userID, Reaction: "going"}

	f.tasks.On("ListByGroup", mock.Anything, f.groupID, 50).Return([]*domain.Task{first, second}, nil)
	f.relations.On("ListByGroup", mock.Anything, f.groupID, 50).
		Return(map[uuid.UUID][]*domain.TaskUserRelation{first.ID: {rel}}, nil)

	tasks, err := f.svc.ListTasks(context.Background(), f.userID, f.groupID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, []*domain.TaskUserRelation{rel}, tasks[0].Relations)
	assert.Empty(t, tasks[1].Relations)
}

func TestTaskService_ListTasksEmptyGroup(t *testing.T) {
	t.Parallel()
	f := newServiceFixture(t)
	f.member()
	f.tasks.On("ListByGroup", mock.Anything, f.groupID, 50).Return([]*domain.Task{}, nil)

	tasks, err := f.svc.ListTasks(context.Background(), f.userID, f.groupID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskService_GetTask(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		task := f.task(t)
		rels := []*domain.TaskUserRelation{{ID: uuid.New(), TaskID: task.ID, UserID: f.userID}}
		f.tasks.On("GetByID", mock.Anything, task.ID, f.groupID).Return(task, nil)
		f.relations.On("ListByTask", mock.Anything, task.ID).Return(rels, nil)

		got, err := f.svc.GetTask(context.Background(), f.userID, f.groupID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, rels, got.Relations)
	})

	t.Run("not in group", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		taskID := uuid.New()
		f.tasks.On("GetByID", mock.Anything, taskID, f.groupID).Return(nil, store.ErrTaskNotFound)

		_, err := f.svc.GetTask(context.Background(), f.userID, f.groupID, taskID)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("applies patch", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		task := f.task(t)
		patch := domain.TaskPatch{Status: domain.Some("done")}
		updated, err := task.Apply(patch)
		require.NoError(t, err)

		f.tasks.On("GetByID", mock.Anything, task.ID, f.groupID).Return(task, nil)
		f.tasks.On("Update", mock.Anything, task, patch).Return(updated, nil)
		f.relations.On("ListByTask", mock.Anything, task.ID).Return([]*domain.TaskUserRelation{}, nil)

		got, err := f.svc.UpdateTask(context.Background(), f.userID, f.groupID, task.ID, patch)
		require.NoError(t, err)
		assert.Equal(t, "done", got.Status)
		assert.Equal(t, "Picnic", got.Title)
	})

	t.Run("validation error passes through", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		task := f.task(t)
		patch := domain.TaskPatch{Title: domain.Null[string]()}
		_, applyErr := task.Apply(patch)

		f.tasks.On("GetByID", mock.Anything, task.ID, f.groupID).Return(task, nil)
		f.tasks.On("Update", mock.Anything, task, patch).Return(nil, applyErr)

		_, err := f.svc.UpdateTask(context.Background(), f.userID, f.groupID, task.ID, patch)
		assert.ErrorIs(t, err, domain.ErrNullNotAllowed)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing task", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		taskID := uuid.New()
		f.tasks.On("GetByID", mock.Anything, taskID, f.groupID).Return(nil, store.ErrTaskNotFound)

		_, err := f.svc.UpdateTask(context.Background(), f.userID, f.groupID, taskID, domain.TaskPatch{})
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("deletes", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		taskID := uuid.New()
		f.tasks.On("Delete", mock.Anything, taskID, f.groupID).Return(nil)

		assert.NoError(t, f.svc.DeleteTask(context.Background(), f.userID, f.groupID, taskID))
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		taskID := uuid.New()
		f.tasks.On("Delete", mock.Anything, taskID, f.groupID).Return(store.ErrTaskNotFound)

		assert.ErrorIs(t, f.svc.DeleteTask(context.Background(), f.userID, f.groupID, taskID), ErrTaskNotFound)
	})
}

func TestTaskService_JoinTask(t *testing.T) {
	t.Parallel()

	t.Run("first join creates relation", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		task := f.task(t)
		f.tasks.On("GetByID", mock.Anything, task.ID, f.groupID).Return(task, nil)
		f.relations.On("Get", mock.Anything, task.ID, f.userID).Return(nil, store.ErrRelationNotFound)
		f.relations.On("Add", mock.Anything, mock.AnythingOfType("*domain.TaskUserRelation")).Return(nil)

		result, err := f.svc.JoinTask(context.Background(), f.userID, f.groupID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.JoinCreated, result.Outcome)
		assert.Equal(t, f.userID, result.Relation.UserID)
		assert.False(t, result.Relation.IsAssigned)
		assert.Equal(t, domain.ReactionNone, result.Relation.Reaction)
	})

	t.Run("second join returns existing relation", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		task := f.task(t)
		existing := &domain.TaskUserRelation{ID: uuid.New(), TaskID: task.ID, UserID: f.userID, Reaction: "going"}
		f.tasks.On("GetByID", mock.Anything, task.ID, f.groupID).Return(task, nil)
		f.relations.On("Get", mock.Anything, task.ID, f.userID).Return(existing, nil)

		result, err := f.svc.JoinTask(context.Background(), f.userID, f.groupID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.JoinAlreadyJoined, result.Outcome)
		assert.Same(t, existing, result.Relation)
		f.relations.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})

	t.Run("lost race re-reads the winner", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		task := f.task(t)
		winner := &domain.TaskUserRelation{ID: uuid.New(), TaskID: task.ID, UserID: f.userID, Reaction: domain.ReactionNone}
		f.tasks.On("GetByID", mock.Anything, task.ID, f.groupID).Return(task, nil)
		f.relations.On("Get", mock.Anything, task.ID, f.userID).Return(nil, store.ErrRelationNotFound).Once()
		f.relations.On("Add", mock.Anything, mock.Anything).Return(store.ErrRelationExists)
		f.relations.On("Get", mock.Anything, task.ID, f.userID).Return(winner, nil).Once()

		result, err := f.svc.JoinTask(context.Background(), f.userID, f.groupID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.JoinAlreadyJoined, result.Outcome)
		assert.Equal(t, winner.ID, result.Relation.ID)
	})

	t.Run("missing task", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		taskID := uuid.New()
		f.tasks.On("GetByID", mock.Anything, taskID, f.groupID).Return(nil, store.ErrTaskNotFound)

		_, err := f.svc.JoinTask(context.Background(), f.userID, f.groupID, taskID)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_UpdateReaction(t *testing.T) {
	t.Parallel()

	t.Run("before join", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		task := f.task(t)
		f.tasks.On("GetByID", mock.Anything, task.ID, f.groupID).Return(task, nil)
		f.relations.On("Get", mock.Anything, task.ID, f.userID).Return(nil, store.ErrRelationNotFound)

		_, err := f.svc.UpdateReaction(context.Background(), f.userID, f.groupID, task.ID,
			domain.RelationPatch{Reaction: domain.Some("going")})
		assert.ErrorIs(t, err, ErrNotJoined)
	})

	t.Run("after join", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		task := f.task(t)
		existing, err := domain.NewTaskUserRelation(task.ID, f.userID, false)
		require.NoError(t, err)
		patch := domain.RelationPatch{Reaction: domain.Some("going")}
		updated, err := existing.Apply(patch)
		require.NoError(t, err)

		f.tasks.On("GetByID", mock.Anything, task.ID, f.groupID).Return(task, nil)
		f.relations.On("Get", mock.Anything, task.ID, f.userID).Return(existing, nil)
		f.relations.On("Update", mock.Anything, existing, patch).Return(updated, nil)

		got, err := f.svc.UpdateReaction(context.Background(), f.userID, f.groupID, task.ID, patch)
		require.NoError(t, err)
		assert.Equal(t, "going", got.Reaction)
		assert.Equal(t, existing.ID, got.ID)
	})

	t.Run("task from another group", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		f.member()
		taskID := uuid.New()
		f.tasks.On("GetByID", mock.Anything, taskID, f.groupID).Return(nil, store.ErrTaskNotFound)

		_, err := f.svc.UpdateReaction(context.Background(), f.userID, f.groupID, taskID,
			domain.RelationPatch{Reaction: domain.Some("going")})
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}
