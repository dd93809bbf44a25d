package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mkarpov/todoevo/internal/api/shared"
	"github.com/mkarpov/todoevo/internal/domain"
	"github.com/mkarpov/todoevo/internal/service"
)

// TaskHandler handles task management API requests. Every operation is
// scoped to the authenticated user; a task that exists under another user
// is indistinguishable from one that does not exist.
type TaskHandler struct {
	taskService *service.TaskService
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req CreateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, req.Title, req.Description, req.Completed)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// List handles GET /tasks?skip=&limit=. The limit is silently clamped to
// the store's maximum page size.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 20)

	tasks, total, err := h.taskService.List(r.Context(), userID, skip, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := TaskListResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
		Total: total,
	}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, NewTaskResponse(t))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := getPathTaskID(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
		return
	}

	task, err := h.taskService.Get(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles PUT and PATCH /tasks/{id}; both apply a partial update.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := getPathTaskID(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
		return
	}

	var req UpdateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskService.Update(r.Context(), id, userID, domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// ToggleComplete handles PATCH /tasks/{id}/complete.
func (h *TaskHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := getPathTaskID(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
		return
	}

	task, err := h.taskService.ToggleCompletion(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := getPathTaskID(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
		return
	}

	if err := h.taskService.Delete(r.Context(), id, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}
