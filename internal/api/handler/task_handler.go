package handler

import (
	"encoding/json"
	"net/http"

	"tasktrack/internal/api/middleware"
	"tasktrack/internal/app/service"
	"tasktrack/internal/common"
	"tasktrack/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

// The frontend reads response.tasks and response.task at the top level.
type taskListResponse struct {
	Success bool         `json:"success"`
	Tasks   []model.Task `json:"tasks"`
}

type taskResponse struct {
	Success bool        `json:"success"`
	Task    *model.Task `json:"task"`
}

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// RegisterRoutes wires the task routes. The "/gp" suffix and the
// POST-reachable update mirror the route shapes the existing frontend
// already calls.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Get("/gp", h.listTasks)
	r.Post("/gp", h.createTask)

	r.Route("/{taskID}/gp", func(tr chi.Router) {
		tr.Get("/", h.getTask)
		tr.Post("/", h.updateTask)
		tr.Put("/", h.updateTask)
		tr.Delete("/", h.deleteTask)
	})
}

func (h *TaskHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	tasks, err := h.taskService.List(r.Context(), userID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, taskListResponse{Success: true, Tasks: tasks})
}

func (h *TaskHandler) createTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var input service.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, input)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, taskResponse{Success: true, Task: task})
}

func (h *TaskHandler) getTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	task, err := h.taskService.Get(r.Context(), userID, chi.URLParam(r, "taskID"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, taskResponse{Success: true, Task: task})
}

func (h *TaskHandler) updateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var input service.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := h.taskService.Update(r.Context(), userID, chi.URLParam(r, "taskID"), input)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, taskResponse{Success: true, Task: task})
}

func (h *TaskHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, chi.URLParam(r, "taskID")); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.Envelope{Success: true, Message: "Task deleted"})
}
