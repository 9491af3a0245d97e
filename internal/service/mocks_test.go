package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/domain"
	"github.com/phrazzld/huddle-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockTaskStore mocks the store.TaskStore interface.
// WithTx returns the same mock so expectations cover transactional calls too.
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]*domain.Task, error) {
	args := m.Called(ctx, groupID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) GetByID(ctx context.Context, taskID, groupID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, taskID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Update(
	ctx context.Context,
	existing *domain.Task,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	args := m.Called(ctx, existing, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Delete(ctx context.Context, taskID, groupID uuid.UUID) error {
	args := m.Called(ctx, taskID, groupID)
	return args.Error(0)
}

func (m *MockTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return m
}

// MockRelationStore mocks the store.RelationStore interface.
type MockRelationStore struct {
	mock.Mock
}

func (m *MockRelationStore) Add(ctx context.Context, rel *domain.TaskUserRelation) error {
	args := m.Called(ctx, rel)
	return args.Error(0)
}

func (m *MockRelationStore) Get(ctx context.Context, taskID, userID uuid.UUID) (*domain.TaskUserRelation, error) {
	args := m.Called(ctx, taskID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaskUserRelation), args.Error(1)
}

func (m *MockRelationStore) Update(
	ctx context.Context,
	existing *domain.TaskUserRelation,
	patch domain.RelationPatch,
) (*domain.TaskUserRelation, error) {
	args := m.Called(ctx, existing, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaskUserRelation), args.Error(1)
}

func (m *MockRelationStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskUserRelation, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TaskUserRelation), args.Error(1)
}

func (m *MockRelationStore) ListByGroup(
	ctx context.Context,
	groupID uuid.UUID,
	limit int,
) (map[uuid.UUID][]*domain.TaskUserRelation, error) {
	args := m.Called(ctx, groupID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]*domain.TaskUserRelation), args.Error(1)
}

func (m *MockRelationStore) WithTx(_ *sql.Tx) store.RelationStore {
	return m
}

// MockMembershipStore mocks the store.MembershipStore interface.
type MockMembershipStore struct {
	mock.Mock
}

func (m *MockMembershipStore) Get(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupMembership, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupMembership), args.Error(1)
}
