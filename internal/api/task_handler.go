package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/huddle-api/internal/api/shared"
	"github.com/phrazzld/huddle-api/internal/platform/logger"
	"github.com/phrazzld/huddle-api/internal/service"
)

// TaskHandler handles the task and relation routes of a group.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskService cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// Routes mounts the task routes on r. The caller is responsible for placing
// them under /groups/{groupID}/tasks behind authentication.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateTask)
	r.Get("/", h.ListTasks)
	r.Route("/{taskID}", func(r chi.Router) {
		r.Get("/", h.GetTask)
		r.Put("/", h.UpdateTask)
		r.Delete("/", h.DeleteTask)
		r.Post("/join", h.JoinTask)
		r.Put("/reaction", h.UpdateReaction)
	})
}

// CreateTask handles POST /groups/{groupID}/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := resolveIDs(w, r, false, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), ids.userID, ids.groupID, req.ToInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListTasks handles GET /groups/{groupID}/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := resolveIDs(w, r, false, log)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), ids.userID, ids.groupID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTask handles GET /groups/{groupID}/tasks/{taskID}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := resolveIDs(w, r, true, log)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), ids.userID, ids.groupID, ids.taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /groups/{groupID}/tasks/{taskID}
// Only the fields present in the body are changed.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := resolveIDs(w, r, true, log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), ids.userID, ids.groupID, ids.taskID, req.ToPatch())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /groups/{groupID}/tasks/{taskID}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := resolveIDs(w, r, true, log)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), ids.userID, ids.groupID, ids.taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	shared.RespondNoContent(w)
}

// JoinTask handles POST /groups/{groupID}/tasks/{taskID}/join
// Joining a task twice returns the existing relation with status 200.
func (h *TaskHandler) JoinTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := resolveIDs(w, r, true, log)
	if !ok {
		return
	}

	result, err := h.taskService.JoinTask(r.Context(), ids.userID, ids.groupID, ids.taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to join task")
		return
	}

	log.Debug("task join handled",
		slog.String("task_id", ids.taskID.String()),
		slog.String("outcome", result.Outcome.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, JoinTaskResponse{
		RelationResponse: relationToResponse(result.Relation),
		Outcome:          result.Outcome.String(),
	})
}

// UpdateReaction handles PUT /groups/{groupID}/tasks/{taskID}/reaction
func (h *TaskHandler) UpdateReaction(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ids, ok := resolveIDs(w, r, true, log)
	if !ok {
		return
	}

	var req UpdateReactionRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	rel, err := h.taskService.UpdateReaction(r.Context(), ids.userID, ids.groupID, ids.taskID, req.ToPatch())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update reaction")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, relationToResponse(rel))
}
