package handler

import (
	"net/http"
	"time"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/adolfofidel/afdevs-admin/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate is shared by the CRUD handlers.
var validate = validator.New()

// ClientHandler exposes staff CRUD for clients.
type ClientHandler struct {
	repo *repository.ClientRepository
}

// NewClientHandler creates a ClientHandler.
func NewClientHandler(repo *repository.ClientRepository) *ClientHandler {
	return &ClientHandler{repo: repo}
}

// List handles GET /api/clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.repo.ListAll(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, clients)
}

// GetByID handles GET /api/clients/{id}.
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	client, err := h.repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	if client == nil {
		Error(w, domain.ErrNotFound("client not found"))
		return
	}
	JSON(w, http.StatusOK, client)
}

// Create handles POST /api/clients.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClientRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		Error(w, domain.ErrBadRequest("missing or invalid fields"))
		return
	}

	now := time.Now()
	client := &domain.Client{
		ID:             uuid.New().String(),
		Name:           req.Name,
		CompanyName:    req.CompanyName,
		PrimaryEmail:   req.PrimaryEmail,
		PrimaryPhone:   req.PrimaryPhone,
		BillingAddress: req.BillingAddress,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.repo.Create(r.Context(), client); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, client)
}

// Update handles PUT /api/clients/{id}.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	if existing == nil {
		Error(w, domain.ErrNotFound("client not found"))
		return
	}

	var req domain.UpdateClientRequest
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

// Delete handles DELETE /api/clients/{id}.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
