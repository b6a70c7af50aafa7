package webapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"taskchat/internal/taskstore"
)

func (s *Server) registerTaskRoutes() {
	s.mux.HandleFunc("/api/tasks", s.handleTaskCollection)
	s.mux.HandleFunc("/api/tasks/count", s.handleTaskCount)
	s.mux.HandleFunc("/api/tasks/", s.handleTaskUpdate)
}

func (s *Server) handleTaskCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTasks(w, r)
	case http.MethodPost:
		s.handleCreateTask(w, r)
	case http.MethodPatch:
		s.handleToggleTask(w, r)
	case http.MethodDelete:
		s.handleDeleteTask(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

func (s *Server) handleListTasks(w http.ResponseWriter, _ *http.Request) {
	tasks, err := s.deps.TaskStore.List()
	if err != nil {
		s.logger().Error("task list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "TASK_LIST_FAILED", "failed to fetch tasks")
		return
	}
	respondOK(w, tasks)
}

// createTaskRequest keeps recurring as a pointer so a missing value is
// distinguishable from an explicit false.
type createTaskRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Priority          string `json:"priority"`
	Recurring         *bool  `json:"recurring"`
	RecurringInterval string `json:"recurringInterval"`
	DueDate           string `json:"dueDate"`
}

func (req createTaskRequest) toDraft() (taskstore.Draft, string) {
	if strings.TrimSpace(req.Title) == "" {
		return taskstore.Draft{}, `invalid or missing "title"`
	}
	if req.Recurring == nil {
		return taskstore.Draft{}, `invalid or missing "recurring" (must be a boolean)`
	}
	draft := taskstore.Draft{
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Priority:          req.Priority,
		Recurring:         *req.Recurring,
		RecurringInterval: req.RecurringInterval,
	}
	if strings.TrimSpace(req.DueDate) != "" {
		due, err := time.Parse(time.RFC3339, strings.TrimSpace(req.DueDate))
		if err != nil {
			return taskstore.Draft{}, `invalid "dueDate" value`
		}
		draft.DueDate = &due
	}
	return draft, ""
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON")
		return
	}
	draft, problem := req.toDraft()
	if problem != "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", problem)
		return
	}
	task, err := s.deps.TaskStore.Create(draft)
	if err != nil {
		if errors.Is(err, taskstore.ErrTitleRequired) || errors.Is(err, taskstore.ErrInvalidPriority) {
			respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
			return
		}
		s.logger().Error("task create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "TASK_CREATE_FAILED", "failed to create task")
		return
	}
	s.logger().Info("task created", "task_id", task.ID)
	s.publishEvent("task.created", task.ID, map[string]any{"task": task})
	respondCreated(w, task)
}

type toggleTaskRequest struct {
	ID        string `json:"id"`
	Completed *bool  `json:"completed"`
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	var req toggleTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON")
		return
	}
	if strings.TrimSpace(req.ID) == "" || req.Completed == nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", `"id" and "completed" are required`)
		return
	}
	task, err := s.deps.TaskStore.SetCompleted(strings.TrimSpace(req.ID), *req.Completed)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			respondError(w, http.StatusNotFound, "TASK_NOT_FOUND", "task not found")
			return
		}
		s.logger().Error("task toggle failed", "task_id", req.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "TASK_TOGGLE_FAILED", "failed to toggle task complete")
		return
	}
	s.publishEvent("task.updated", task.ID, map[string]any{"task": task})
	respondOK(w, task)
}

type deleteTaskRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	var req deleteTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON")
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", `"id" is required`)
		return
	}
	task, err := s.deps.TaskStore.Delete(strings.TrimSpace(req.ID))
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			respondError(w, http.StatusNotFound, "TASK_NOT_FOUND", "task not found")
			return
		}
		s.logger().Error("task delete failed", "task_id", req.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "TASK_DELETE_FAILED", "failed to delete task")
		return
	}
	s.logger().Info("task deleted", "task_id", task.ID)
	s.publishEvent("task.deleted", task.ID, map[string]any{"task_id": task.ID})
	respondOK(w, task)
}

type updateTaskRequest struct {
	ID       string            `json:"id"`
	FormData createTaskRequest `json:"formData"`
}

// handleTaskUpdate serves PUT /api/tasks/{id}; the id also travels in the
// body alongside the full field set.
func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	pathID := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	if pathID == "" || strings.Contains(pathID, "/") {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
		return
	}
	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON")
		return
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = pathID
	}
	draft, problem := req.FormData.toDraft()
	if problem != "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", problem)
		return
	}
	task, err := s.deps.TaskStore.Update(id, draft)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			respondError(w, http.StatusNotFound, "TASK_NOT_FOUND", "task not found")
			return
		}
		if errors.Is(err, taskstore.ErrTitleRequired) || errors.Is(err, taskstore.ErrInvalidPriority) {
			respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
			return
		}
		s.logger().Error("task update failed", "task_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "TASK_UPDATE_FAILED", "failed to update task")
		return
	}
	s.publishEvent("task.updated", task.ID, map[string]any{"task": task})
	respondOK(w, task)
}

func (s *Server) handleTaskCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	count, err := s.deps.TaskStore.CountPending()
	if err != nil {
		s.logger().Error("task count failed", "error", err)
		respondError(w, http.StatusInternalServerError, "TASK_COUNT_FAILED", "failed to fetch task count")
		return
	}
	respondOK(w, map[string]any{"count": count})
}
