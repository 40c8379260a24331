package handler

import (
	"net/http"

	"github.com/adolfofidel/afdevs-admin/internal/contextkeys"
	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/adolfofidel/afdevs-admin/internal/repository"
)

// PortalHandler serves the client self-service portal. Every endpoint
// resolves the caller to a client row by the email in their token; portal
// users never pass IDs for other clients.
type PortalHandler struct {
	clients *repository.ClientRepository
	sites   *repository.SiteRepository
}

// NewPortalHandler creates a PortalHandler.
func NewPortalHandler(clients *repository.ClientRepository, sites *repository.SiteRepository) *PortalHandler {
	return &PortalHandler{clients: clients, sites: sites}
}

func (h *PortalHandler) resolveClient(r *http.Request) (*domain.Client, error) {
	email, _ := r.Context().Value(contextkeys.UserEmail).(string)
	if email == "" {
		return nil, domain.ErrUnauthorized("no email on token")
	}
	client, err := h.clients.FindByEmail(r.Context(), email)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound("no client record for this account")
	}
	return client, nil
}

// Me handles GET /api/portal/me.
func (h *PortalHandler) Me(w http.ResponseWriter, r *http.Request) {
	client, err := h.resolveClient(r)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, client)
}

// Sites handles GET /api/portal/sites.
func (h *PortalHandler) Sites(w http.ResponseWriter, r *http.Request) {
	client, err := h.resolveClient(r)
	if err != nil {
		Error(w, err)
		return
	}
	sites, err := h.sites.ListByClient(r.Context(), client.ID)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, sites)
}
