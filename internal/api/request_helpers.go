package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/api/shared"
	"github.com/phrazzld/huddle-api/internal/domain"
)

// Path parameter names of the task routes.
const (
	groupIDParam = "groupID"
	taskIDParam  = "taskID"
)

// getPathUUID extracts a UUID from the URL path parameters.
// A missing or malformed value yields a validation error (400).
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// requestIDs holds the identifiers every task route needs.
type requestIDs struct {
	userID  uuid.UUID
	groupID uuid.UUID
	taskID  uuid.UUID
}

// resolveIDs reads the caller from the context and the groupID path parameter,
// plus taskID when withTask is set. It writes the error response and returns
// false if any of them is missing or invalid.
func resolveIDs(w http.ResponseWriter, r *http.Request, withTask bool, log *slog.Logger) (requestIDs, bool) {
	var ids requestIDs

	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return ids, false
	}
	ids.userID = userID

	groupID, err := getPathUUID(r, groupIDParam)
	if err != nil {
		log.Debug("invalid group id", slog.String("value", chi.URLParam(r, groupIDParam)))
		HandleAPIError(w, r, err, "")
		return ids, false
	}
	ids.groupID = groupID

	if withTask {
		taskID, err := getPathUUID(r, taskIDParam)
		if err != nil {
			log.Debug("invalid task id", slog.String("value", chi.URLParam(r, taskIDParam)))
			HandleAPIError(w, r, err, "")
			return ids, false
		}
		ids.taskID = taskID
	}
	return ids, true
}

// decodeAndValidate decodes the JSON body into v and validates it. It writes
// the error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}, log *slog.Logger) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		log.Debug("failed to decode request body", slog.String("error", err.Error()))
		var fieldErr *domain.ValidationError
		if !errors.As(err, &fieldErr) {
			err = errMalformedBody
		}
		HandleAPIError(w, r, err, "")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		log.Debug("request validation failed", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}
