package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/huddle-api/internal/domain"
	"github.com/phrazzld/huddle-api/internal/service"
	"github.com/phrazzld/huddle-api/internal/service/auth"
	"github.com/phrazzld/huddle-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"missing identity", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"not a member", service.ErrNotGroupMember, http.StatusForbidden},
		{"task not found", service.ErrTaskNotFound, http.StatusNotFound},
		{"store task not found", fmt.Errorf("lookup: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"not joined", service.ErrNotJoined, http.StatusNotFound},
		{"field validation", domain.NewValidationError("title", "cannot be null", domain.ErrNullNotAllowed), http.StatusBadRequest},
		{"invalid id", domain.NewValidationError("taskID", "has invalid format", domain.ErrInvalidID), http.StatusBadRequest},
		{"malformed body", errMalformedBody, http.StatusBadRequest},
		{"validator", validator.ValidationErrors{}, http.StatusBadRequest},
		{"wrapped unexpected", service.NewTaskServiceError("list_tasks", "boom", errors.New("db down")), http.StatusInternalServerError},
		{"unknown", errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"expired token", auth.ErrExpiredToken, "Invalid token"},
		{"not a member", service.ErrNotGroupMember, "Not a group member"},
		{"task not found", service.ErrTaskNotFound, "Task not found"},
		{"not joined", store.ErrRelationNotFound, "Not joined to this task yet"},
		{"malformed body", errMalformedBody, "Invalid request format"},
		{"field error", domain.NewValidationError("status", "cannot be null", domain.ErrNullNotAllowed), "Invalid status: cannot be null"},
		{"bare validation", domain.ErrValidation, "Invalid entity data"},
		{
			name:     "internal details are hidden",
			err:      errors.New("pq: password authentication failed for user app"),
			expected: "An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestHandleAPIErrorFallback(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	w := httptest.NewRecorder()
	HandleAPIError(w, req, errors.New("db down"), "Failed to list tasks")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to list tasks"}`, w.Body.String())

	w = httptest.NewRecorder()
	HandleAPIError(w, req, service.ErrTaskNotFound, "Failed to list tasks")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Task not found"}`, w.Body.String())
}
