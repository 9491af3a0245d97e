package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/domain"
	"github.com/phrazzld/huddle-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockTaskService is a testify mock of service.TaskService.
type MockTaskService struct {
	mock.Mock
}

var _ service.TaskService = (*MockTaskService)(nil)

// CreateTask mocks service.TaskService.CreateTask
func (m *MockTaskService) CreateTask(
	ctx context.Context,
	userID, groupID uuid.UUID,
	in domain.TaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, userID, groupID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

// ListTasks mocks service.TaskService.ListTasks
func (m *MockTaskService) ListTasks(ctx context.Context, userID, groupID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, userID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

// GetTask mocks service.TaskService.GetTask
func (m *MockTaskService) GetTask(ctx context.Context, userID, groupID, taskID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, userID, groupID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

// UpdateTask mocks service.TaskService.UpdateTask
func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	userID, groupID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	args := m.Called(ctx, userID, groupID, taskID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

// DeleteTask mocks service.TaskService.DeleteTask
func (m *MockTaskService) DeleteTask(ctx context.Context, userID, groupID, taskID uuid.UUID) error {
	args := m.Called(ctx, userID, groupID, taskID)
	return args.Error(0)
}

// JoinTask mocks service.TaskService.JoinTask
func (m *MockTaskService) JoinTask(
	ctx context.Context,
	userID, groupID, taskID uuid.UUID,
) (*domain.JoinResult, error) {
	args := m.Called(ctx, userID, groupID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JoinResult), args.Error(1)
}

// UpdateReaction mocks service.TaskService.UpdateReaction
func (m *MockTaskService) UpdateReaction(
	ctx context.Context,
	userID, groupID, taskID uuid.UUID,
	patch domain.RelationPatch,
) (*domain.TaskUserRelation, error) {
	args := m.Called(ctx, userID, groupID, taskID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaskUserRelation), args.Error(1)
}
