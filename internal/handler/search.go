package handler

import (
	"net/http"
	"strings"

	"github.com/adolfofidel/afdevs-admin/internal/repository"
)

const searchLimit = 8

// SearchResult is one row in the type-ahead dropdown.
type SearchResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Subtitle string `json:"subtitle,omitempty"`
}

// SearchHandler serves the staff type-ahead search across clients and sites.
type SearchHandler struct {
	clients *repository.ClientRepository
	sites   *repository.SiteRepository
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(clients *repository.ClientRepository, sites *repository.SiteRepository) *SearchHandler {
	return &SearchHandler{clients: clients, sites: sites}
}

// Search handles GET /api/search?q=. Empty or whitespace-only queries return
// an empty list without touching the database.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		JSON(w, http.StatusOK, []SearchResult{})
		return
	}

	results := []SearchResult{}

	clients, err := h.clients.Search(r.Context(), q, searchLimit)
	if err != nil {
		Error(w, err)
		return
	}
	for _, c := range clients {
		sub := ""
		if c.CompanyName != nil {
			sub = *c.CompanyName
		}
		results = append(results, SearchResult{
			ID:       c.ID,
			Name:     c.Name,
			Type:     "client",
			Subtitle: sub,
		})
	}

	sites, err := h.sites.Search(r.Context(), q, searchLimit)
	if err != nil {
		Error(w, err)
		return
	}
	for _, s := range sites {
		sub := ""
		if s.City != nil {
			sub = *s.City
		}
		results = append(results, SearchResult{
			ID:       s.ID,
			Name:     s.Name,
			Type:     "site",
			Subtitle: sub,
		})
	}

	JSON(w, http.StatusOK, results)
}
