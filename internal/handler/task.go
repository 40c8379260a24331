package handler

import (
	"net/http"
	"time"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/adolfofidel/afdevs-admin/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TaskHandler exposes staff CRUD for maintenance tasks.
type TaskHandler struct {
	repo *repository.TaskRepository
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(repo *repository.TaskRepository) *TaskHandler {
	return &TaskHandler{repo: repo}
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.repo.ListAll(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, tasks)
}

// GetByID handles GET /api/tasks/{id}.
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	task, err := h.repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	if task == nil {
		Error(w, domain.ErrNotFound("task not found"))
		return
	}
	JSON(w, http.StatusOK, task)
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		Error(w, domain.ErrBadRequest("missing or invalid fields"))
		return
	}

	status := req.Status
	if status == "" {
		status = domain.TaskPending
	}
	urgency := req.Urgency
	if urgency == "" {
		urgency = domain.UrgencyNormal
	}

	now := time.Now()
	task := &domain.Task{
		ID:             uuid.New().String(),
		SiteID:         req.SiteID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         status,
		Urgency:        urgency,
		TaskType:       req.TaskType,
		AssigneeID:     req.AssigneeID,
		ScheduledStart: req.ScheduledStart,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.repo.Create(r.Context(), task); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, task)
}

// Update handles PUT /api/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	if existing == nil {
		Error(w, domain.ErrNotFound("task not found"))
		return
	}

	var req domain.UpdateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		Error(w, domain.ErrBadRequest("invalid fields"))
		return
	}

	if err := h.repo.Update(r.Context(), id, &req); err != nil {
		Error(w, err)
		return
	}

	updated, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
