package handler

import (
	"net/http"

	"github.com/adolfofidel/afdevs-admin/internal/domain"
)

// Plans handles GET /api/plans. The catalog is a single plan with its tax
// breakdown precomputed so the portal never does money math in the browser.
func Plans(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, []domain.Plan{domain.CurrentPlan()})
}
