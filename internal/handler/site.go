package handler

import (
	"net/http"
	"time"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/adolfofidel/afdevs-admin/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SiteHandler exposes staff CRUD for sites.
type SiteHandler struct {
	repo *repository.SiteRepository
}

// NewSiteHandler creates a SiteHandler.
func NewSiteHandler(repo *repository.SiteRepository) *SiteHandler {
	return &SiteHandler{repo: repo}
}

// List handles GET /api/sites. An optional clientId query parameter
// restricts the listing to one client's sites.
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		sites []*domain.Site
		err   error
	)
	if clientID := r.URL.Query().Get("clientId"); clientID != "" {
		sites, err = h.repo.ListByClient(r.Context(), clientID)
	} else {
		sites, err = h.repo.ListAll(r.Context())
	}
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, sites)
}

// GetByID handles GET /api/sites/{id}.
func (h *SiteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	site, err := h.repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	if site == nil {
		Error(w, domain.ErrNotFound("site not found"))
		return
	}
	JSON(w, http.StatusOK, site)
}

// Create handles POST /api/sites.
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSiteRequest
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
		status = domain.SiteActive
	}

	now := time.Now()
	site := &domain.Site{
		ID:                  uuid.New().String(),
		ClientID:            req.ClientID,
		Name:                req.Name,
		Address:             req.Address,
		City:                req.City,
		Region:              req.Region,
		Status:              status,
		UnifiSiteID:         req.UnifiSiteID,
		GoogleDriveFolderID: req.GoogleDriveFolderID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := h.repo.Create(r.Context(), site); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, site)
}

// Update handles PUT /api/sites/{id}.
func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		Error(w, err)
		return
	}
	if existing == nil {
		Error(w, domain.ErrNotFound("site not found"))
		return
	}

	var req domain.UpdateSiteRequest
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

// Delete handles DELETE /api/sites/{id}.
func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
